package validators

import "go.mongodb.org/mongo-driver/bson"

var SessionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"student_id",
			"entry_time",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"student_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"entry_time": bson.M{
				"bsonType": "date",
			},

			"exit_time": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"IN", "OUT"},
			},
		},
	},
}
