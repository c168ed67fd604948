package validators

import "go.mongodb.org/mongo-driver/bson"

var DriverValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"code", "name", "phone", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"code":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": 64},
			"name":       bson.M{"bsonType": "string"},
			"phone":      bson.M{"bsonType": "string", "pattern": `^\+[1-9][0-9]{6,14}$`},
			"active":     bson.M{"bsonType": bson.A{"bool", "null"}},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
