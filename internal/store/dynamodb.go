package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"liveattendance/internal/attendance"
)

// dynamoItem is keyed by the record path, so PutItem replaces earlier check-ins.
type dynamoItem struct {
	Path       string `dynamodbav:"path"`
	Collection string `dynamodbav:"collection"`
	attendance.Record
}

// DynamoDB writes records to a table whose partition key is "path".
type DynamoDB struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoDB(client *dynamodb.Client, tableName string) *DynamoDB {
	return &DynamoDB{client: client, tableName: tableName}
}

func OpenDynamoDB(ctx context.Context, cfg DynamoDBConfig) (*DynamoDB, error) {
	if cfg.Table == "" {
		return nil, fmt.Errorf("DYNAMODB_TABLE is not set")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewDynamoDB(client, cfg.Table), nil
}

func (r *DynamoDB) Write(ctx context.Context, collection, key string, rec attendance.Record) error {
	item, err := attributevalue.MarshalMap(dynamoItem{
		Path:       attendance.Path(collection, key),
		Collection: collection,
		Record:     rec,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save record to DynamoDB: %w", err)
	}
	return nil
}

func (r *DynamoDB) Delete(ctx context.Context, collection, key string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]dynamodbtypes.AttributeValue{
			"path": &dynamodbtypes.AttributeValueMemberS{Value: attendance.Path(collection, key)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (r *DynamoDB) Close() error { return nil }
