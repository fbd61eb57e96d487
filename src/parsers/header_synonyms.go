package parsers

import "github.com/username/salesinsight/backend/src/models"

// fieldSynonyms lists the lowercase header spellings accepted for each field.
// When a spelling appears under two fields the later entry in synonymOrder wins,
// so "amount" resolves to quantity.
var fieldSynonyms = map[models.CanonicalField][]string{
	models.FieldName: {
		"имя", "название", "наименование", "товар", "продукт", "изделие",
		"товарный знак", "бренд", "марка", "модель", "артикул", "код товара",
		"название товара", "наименование позиции", "описание", "продукция",
		"категория", "тип", "группа", "линейка", "серия",
		"name", "product", "item", "goods", "article", "sku", "model",
		"brand", "title", "description", "product name", "item name",
		"product title", "product description", "product code", "stock code",
		"item code", "product group", "category", "type", "series", "line",
		"product_name", "item_name", "stockcode", "stock_code",
	},
	models.FieldPrice: {
		"цена", "стоимость", "сумма", "ценник", "цена продажи", "цена покупки", "выручка",
		"розничная цена", "оптовая цена", "себестоимость", "цена за единицу",
		"цена товара", "цена позиции", "цена без скидки", "финальная цена",
		"рекомендованная цена", "рыночная цена",
		"price", "cost", "amount", "retail price", "wholesale price",
		"unit price", "sale price", "purchase price", "list price",
		"market price", "msrp", "recommended price", "final price",
		"item price", "product price", "price per unit",
		"unit_price", "unitprice",
	},
	models.FieldQuantity: {
		"количество", "кол-во", "число", "объем", "продажи", "запас",
		"остаток", "количество на складе", "доступное количество",
		"количество товара", "количество позиций", "штук", "упаковок",
		"quantity", "qty", "amount", "number", "count", "stock",
		"inventory", "available quantity", "stock quantity",
		"items in stock", "units", "packages", "pieces",
	},
	models.FieldDate: {
		"дата", "дата продажи", "дата покупки", "дата создания",
		"дата обновления", "дата транзакции", "дата заказа",
		"дата поставки", "дата выполнения", "время", "период",
		"год", "месяц", "день", "срок",
		"date", "sale date", "purchase date", "creation date",
		"update date", "transaction date", "order date",
		"delivery date", "fulfillment date", "time", "period",
		"year", "month", "day", "datetime", "timestamp",
		"invoice_date", "invoicedate", "sale_date", "order_date",
	},
	models.FieldRegion: {
		"регион", "область", "город", "страна", "территория",
		"зона", "район", "округ", "местоположение", "локация",
		"место", "адрес", "филиал", "магазин", "точка продаж",
		"склад", "центр", "подразделение",
		"region", "area", "city", "country", "territory",
		"zone", "district", "location", "place", "address",
		"branch", "store", "shop", "outlet", "warehouse",
		"center", "division", "department", "shopping_mall",
	},
	models.FieldDiscount: {
		"скидка", "процент скидки", "размер скидки", "discount",
		"discount percent", "discount amount",
	},
	models.FieldCurrency: {
		"валюта", "код валюты", "currency", "currency code",
	},
	models.FieldID: {
		"ид", "код", "уникальный код", "идентификатор", "id",
		"code", "unique code", "identifier",
	},
}

var synonymOrder = []models.CanonicalField{
	models.FieldName,
	models.FieldPrice,
	models.FieldQuantity,
	models.FieldDate,
	models.FieldRegion,
	models.FieldDiscount,
	models.FieldCurrency,
	models.FieldID,
}

// headerSynonyms is the flattened, read-only lookup table. It is built once at
// package init and never mutated afterwards.
var headerSynonyms = buildHeaderSynonyms()

func buildHeaderSynonyms() map[string]models.CanonicalField {
	table := make(map[string]models.CanonicalField)
	for _, field := range synonymOrder {
		table[string(field)] = field
		for _, spelling := range fieldSynonyms[field] {
			table[spelling] = field
		}
	}
	return table
}
