package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDriver keeps each collection in a table named <prefix>-<collection>
// with "id" as the partition key. DynamoDB has no unique secondary
// constraints, so Ensure ignores unique fields and callers rely on their
// own check-then-insert guard.
type DynamoDriver struct {
	client *dynamodb.Client
	prefix string
}

// OpenDynamo loads the default AWS configuration for region. Static
// credentials from AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY take precedence
// when both are set; endpoint overrides the service URL (DynamoDB Local).
func OpenDynamo(ctx context.Context, region, endpoint, prefix string) (*DynamoDriver, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &DynamoDriver{client: client, prefix: prefix}, nil
}

func (d *DynamoDriver) Name() string { return "dynamodb" }

func (d *DynamoDriver) table(coll string) *string {
	return aws.String(d.prefix + "-" + coll)
}

func (d *DynamoDriver) Ping(ctx context.Context) error {
	_, err := d.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	return err
}

func (d *DynamoDriver) Close() error { return nil }

func (d *DynamoDriver) Ensure(ctx context.Context, coll string, _ []string) error {
	if err := checkIdent("collection", coll); err != nil {
		return err
	}
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: d.table(coll)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe %s: %w", coll, err)
	}

	_, err = d.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: d.table(coll),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", coll, err)
	}
	waiter := dynamodb.NewTableExistsWaiter(d.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: d.table(coll)}, 2*time.Minute); err != nil {
		return fmt.Errorf("wait for %s: %w", coll, err)
	}
	return nil
}

func (d *DynamoDriver) All(ctx context.Context, coll string) ([][]byte, error) {
	return d.scan(ctx, &dynamodb.ScanInput{TableName: d.table(coll)})
}

func (d *DynamoDriver) Get(ctx context.Context, coll, id string) ([]byte, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      d.table(coll),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ErrMissing
	}
	return fromItem(out.Item)
}

func (d *DynamoDriver) Find(ctx context.Context, coll, field, value string) ([][]byte, error) {
	if err := checkIdent("field", field); err != nil {
		return nil, err
	}
	return d.scan(ctx, &dynamodb.ScanInput{
		TableName:                 d.table(coll),
		FilterExpression:          aws.String("#f = :v"),
		ExpressionAttributeNames:  map[string]string{"#f": field},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		ConsistentRead:            aws.Bool(true),
	})
}

func (d *DynamoDriver) Insert(ctx context.Context, coll, id string, doc []byte) error {
	item, err := toItem(id, doc)
	if err != nil {
		return err
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           d.table(coll),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return fmt.Errorf("%w: id %s", ErrDuplicate, id)
	}
	return err
}

func (d *DynamoDriver) Replace(ctx context.Context, coll, id string, doc []byte) (bool, error) {
	item, err := toItem(id, doc)
	if err != nil {
		return false, err
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           d.table(coll),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *DynamoDriver) Delete(ctx context.Context, coll, id string) (bool, error) {
	out, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    d.table(coll),
		Key:          idKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, err
	}
	return len(out.Attributes) > 0, nil
}

func (d *DynamoDriver) scan(ctx context.Context, in *dynamodb.ScanInput) ([][]byte, error) {
	var docs [][]byte
	p := dynamodb.NewScanPaginator(d.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			doc, err := fromItem(item)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func toItem(id string, doc []byte) (map[string]types.AttributeValue, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	m["id"] = id
	return attributevalue.MarshalMap(m)
}

func fromItem(item map[string]types.AttributeValue) ([]byte, error) {
	var m map[string]any
	if err := attributevalue.UnmarshalMap(item, &m); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return json.Marshal(m)
}
