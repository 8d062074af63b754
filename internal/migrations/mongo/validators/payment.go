package validators

import "go.mongodb.org/mongo-driver/bson"

var PaymentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id",
			"amount",
			"currency",
			"status",
			"reported_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"amount": decimalString,

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"status": bson.M{
				"enum": []string{"succeeded", "failed"},
			},

			"gateway_ref": bson.M{
				"bsonType": "string",
			},

			"reported_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
