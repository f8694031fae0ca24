package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/zlnvch/stylussphere/models"
	"github.com/zlnvch/stylussphere/store"
)

type DynamoStylusStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoStylusStore(ctx context.Context, devMode bool, dynamodbEndpoint string, tableName string) (*DynamoStylusStore, error) {
	client, err := newDynamoDBClient(ctx, devMode, dynamodbEndpoint)
	if err != nil {
		return nil, err
	}

	tables, err := getTables(client, ctx)
	if err != nil {
		return nil, err
	}

	foundTable := false
	for _, table := range tables {
		if table == tableName {
			foundTable = true
			break
		}
	}
	if !foundTable {
		return nil, fmt.Errorf("given table name '%s' not found in dynamodb", tableName)
	}

	return &DynamoStylusStore{client: client, tableName: tableName}, nil
}

func (dynamoStore *DynamoStylusStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	du := userToDynamo(user)
	du.Created = time.Now().Unix()

	inserted, err := putItemIfAbsent(dynamoStore, ctx, du)
	if err != nil {
		return models.User{}, err
	}
	if !inserted {
		return models.User{}, store.ErrItemExists
	}

	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoStylusStore) GetUser(ctx context.Context, username string) (models.User, error) {
	du, err := getItem[dynamoUser](dynamoStore, ctx, "USER#"+username, "PROFILE", false)
	if err != nil {
		return models.User{}, err
	}

	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoStylusStore) CreateSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	ds := snapshotToDynamo(snapshot)
	ds.Created = time.Now().Unix()

	// The conditional put doubles as the per-owner id uniqueness check;
	// the caller regenerates the id when ErrItemExists comes back.
	inserted, err := putItemIfAbsent(dynamoStore, ctx, ds)
	if err != nil {
		return err
	}
	if !inserted {
		return store.ErrItemExists
	}

	return nil
}

func (dynamoStore *DynamoStylusStore) GetSnapshot(ctx context.Context, owner string, id string) (models.Snapshot, error) {
	ds, err := getItem[dynamoSnapshot](dynamoStore, ctx, "SNAP#"+owner, id, false)
	if err != nil {
		return models.Snapshot{}, err
	}

	return snapshotFromDynamo(ds), nil
}
