package mongodb

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func StartConnection(mgoUrl string) *mongo.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	mgoConn, err := mongo.Connect(ctx, options.Client().ApplyURI(mgoUrl))
	if err != nil {
		log.Fatalf("Error during connection with mongodb: %v", err)
	}
	log.Printf("Connected successfully with mongodb")
	return mgoConn
}
