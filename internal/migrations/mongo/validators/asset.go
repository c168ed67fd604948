package validators

import "go.mongodb.org/mongo-driver/bson"

var AssetValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"code", "kind", "name", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"code":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 64},
			"kind":        bson.M{"bsonType": "string", "enum": []string{"room", "vehicle", "item", "other"}},
			"name":        bson.M{"bsonType": "string"},
			"stock_count": bson.M{"bsonType": integer, "minimum": 0},
			"location":    bson.M{"bsonType": "string"},
			"description": bson.M{"bsonType": "string"},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}
