package dynamo

import "github.com/zlnvch/stylussphere/models"

type dynamoUser struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	Username     string `dynamodbav:"Username"`
	PasswordHash string `dynamodbav:"PasswordHash"`
	Created      int64  `dynamodbav:"Created"`
}

// Map domain User -> Dynamo
func userToDynamo(u models.User) dynamoUser {
	return dynamoUser{
		PK:           "USER#" + u.Username,
		SK:           "PROFILE",
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Created:      u.Created,
	}
}

// Map Dynamo -> domain User
func userFromDynamo(du dynamoUser) models.User {
	return models.User{
		Username:     du.Username,
		PasswordHash: du.PasswordHash,
		Created:      du.Created,
	}
}

type dynamoSnapshot struct {
	PK      string `dynamodbav:"PK"`
	SK      string `dynamodbav:"SK"`
	Owner   string `dynamodbav:"Owner"`
	Payload []byte `dynamodbav:"Payload"`
	Created int64  `dynamodbav:"Created"`
}

// Map domain Snapshot -> Dynamo
func snapshotToDynamo(s models.Snapshot) dynamoSnapshot {
	return dynamoSnapshot{
		PK:      "SNAP#" + s.Owner,
		SK:      s.Id,
		Owner:   s.Owner,
		Payload: s.Payload,
		Created: s.Created,
	}
}

// Map Dynamo -> domain Snapshot
func snapshotFromDynamo(ds dynamoSnapshot) models.Snapshot {
	return models.Snapshot{
		Id:      ds.SK,
		Owner:   ds.Owner,
		Payload: ds.Payload,
		Created: ds.Created,
	}
}
