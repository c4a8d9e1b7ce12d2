package database

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dbName = "hawkeye"

var MongoClient *mongo.Client

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	MongoClient = client
	log.Println("Connected to MongoDB")
	return client, nil
}

func Disconnect(ctx context.Context) {
	if MongoClient == nil {
		return
	}
	if err := MongoClient.Disconnect(ctx); err != nil {
		log.Printf("Error disconnecting from MongoDB: %v", err)
	}
}

func Users() *mongo.Collection {
	return MongoClient.Database(dbName).Collection("users")
}

func Scans() *mongo.Collection {
	return MongoClient.Database(dbName).Collection("scans")
}
