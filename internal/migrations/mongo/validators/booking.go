package validators

import "go.mongodb.org/mongo-driver/bson"

// decimalString matches the canonical fixed-point encoding used for all
// money fields. Amounts are stored as strings so the database never
// holds a binary-float money value.
var decimalString = bson.M{
	"bsonType": "string",
	"pattern":  `^-?\d+(\.\d+)?$`,
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reference",
			"resource_id",
			"resource_kind",
			"requester_id",
			"quantity",
			"start",
			"end",
			"status",
			"currency",
			"base_price",
			"service_fee",
			"additional_fees",
			"total",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"reference": bson.M{
				"bsonType":  "string",
				"minLength": 10,
				"maxLength": 10,
				"pattern":   "^[A-Z]{2}[0-9A-Z]{8}$",
			},

			"resource_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"resource_kind": bson.M{
				"enum": []string{"flight", "yacht", "car", "hotel_room"},
			},

			"requester_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"quantity": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  500,
			},

			"start": bson.M{
				"bsonType": "date",
			},

			"end": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"enum": []string{"pending", "confirmed", "cancelled", "completed"},
			},

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"base_price":      decimalString,
			"service_fee":     decimalString,
			"additional_fees": decimalString,
			"total":           decimalString,

			"passengers": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"name"},
					"properties": bson.M{
						"name": bson.M{
							"bsonType":  "string",
							"minLength": 2,
							"maxLength": 100,
						},
						"phone": bson.M{
							"bsonType": "string",
						},
					},
				},
			},

			"add_ons": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"label", "price", "quantity"},
					"properties": bson.M{
						"label": bson.M{
							"bsonType":  "string",
							"minLength": 2,
							"maxLength": 100,
						},
						"price": decimalString,
						"quantity": bson.M{
							"bsonType": "int",
							"minimum":  1,
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"cancel_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
