package model

// Student is a directory entry. The business student ID doubles as the
// document key. PasswordHash is a bcrypt hash and never leaves the server.
type Student struct {
	StudentID    string `json:"student_id" bson:"_id"`
	Name         string `json:"name" bson:"name"`
	Course       string `json:"course" bson:"course"`
	Department   string `json:"department" bson:"department"`
	PasswordHash string `json:"-" bson:"password_hash"`
}

// Admin is a backoffice operator account.
type Admin struct {
	Username     string `json:"username" bson:"_id"`
	PasswordHash string `json:"-" bson:"password_hash"`
}
