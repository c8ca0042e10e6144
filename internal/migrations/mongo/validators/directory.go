package validators

import "go.mongodb.org/mongo-driver/bson"

// Students and admins are keyed by their business identifier, so _id is
// a string in both collections.

var StudentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"course",
			"department",
			"password_hash",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"course": bson.M{
				"bsonType": "string",
			},

			"department": bson.M{
				"bsonType": "string",
			},

			"password_hash": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
		},
	},
}

var AdminValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"password_hash",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"password_hash": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
		},
	},
}
