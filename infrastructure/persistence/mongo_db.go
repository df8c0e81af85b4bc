package persistence

import (
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewMongoDb connects to MongoDB. Mongo is optional infrastructure; callers
// treat a nil client as "archive disabled".
func NewMongoDb(host, port, user, password, name string) (*mongo.Client, error) {
	uri := fmt.Sprintf("mongodb://%s:%s/%s", host, port, name)
	if user != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%s/%s", url.QueryEscape(user), url.QueryEscape(password), host, port, name)
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return client, nil
}
