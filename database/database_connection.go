package database

import (
	"context"
	"log"
	"os"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

var (
	dbClient *mongo.Client
	connOnce sync.Once
)

func Connect() *mongo.Client {
	connOnce.Do(func() {
		serverAPI := options.ServerAPI(options.ServerAPIVersion1)
		uri := os.Getenv("MONGODB_URI")
		opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
		client, err := mongo.Connect(opts)
		if err != nil {
			panic(err)
		}
		if err := client.Ping(context.TODO(), readpref.Primary()); err != nil {
			panic(err)
		}
		log.Println("Connected to MongoDB")
		dbClient = client
	})
	return dbClient
}

func OpenCollection(collectionName string) *mongo.Collection {
	client := Connect()
	databaseName := os.Getenv("DATABASE_NAME")
	return client.Database(databaseName).Collection(collectionName)
}
