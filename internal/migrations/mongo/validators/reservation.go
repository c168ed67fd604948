package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = bson.A{"int", "long"}

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"kind",
			"asset_code",
			"start_time",
			"end_time",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"room", "vehicle"},
			},

			"asset_code": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"asset_name": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"purpose": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"vehicle": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"driver_ref": bson.M{"bsonType": "string"},
				},
			},

			"room": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"items": bson.M{
						"bsonType": "array",
						"maxItems": 50,
						"items": bson.M{
							"bsonType": "object",
							"required": []string{"item_code", "quantity"},
							"properties": bson.M{
								"item_code": bson.M{"bsonType": "string"},
								"quantity":  bson.M{"bsonType": integer, "minimum": 1},
							},
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
