// Package status records a clip's terminal outcome on its existing metadata
// record and, for subscriber clips, fans it out to the discovery indexes.
package status

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ClipStatus is the terminal status written to the metadata record.
type ClipStatus int

const (
	StatusPublished ClipStatus = 1
	StatusFailed    ClipStatus = 2
)

// zeroULID sorts subscriber clips ahead of time-ordered entries in the
// popularity indexes.
const zeroULID = "00000000000000000000000000"

// clipPrefixLen is the clip id prefix used to shard the recent-clip indexes.
const clipPrefixLen = 4

// MetadataStoreConfig is the caller-supplied document store configuration.
// Its presence on a request is what enables status recording at all.
type MetadataStoreConfig struct {
	Region          string `json:"region"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	Endpoint        string `json:"endpoint,omitempty"`
}

// Recorder performs conditional updates against the clip metadata table.
// Every call is best-effort: the pipeline's outcome never depends on it.
type Recorder struct {
	client *dynamodb.Client
	table  string
	logger *zap.Logger
}

// NewRecorder creates a recorder from request-scoped credentials. table comes
// from the environment (DYNAMO_TABLE_NAME), not the request.
func NewRecorder(ctx context.Context, cfg MetadataStoreConfig, table string, logger *zap.Logger) (*Recorder, error) {
	if table == "" {
		return nil, fmt.Errorf("metadata table name not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Recorder{client: client, table: table, logger: logger}, nil
}

// Record writes the terminal status onto the existing record for
// (accountID, clipID). The update is conditional on the record existing;
// this system never creates metadata records. When a subscriber clip is
// published, the four discovery index key pairs are populated in the same
// update.
func (r *Recorder) Record(ctx context.Context, accountID, clipID, gameID string, st ClipStatus, subscriber bool) error {
	input := updateInput(r.table, accountID, clipID, gameID, st, subscriber)
	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update clip %s/%s: %w", accountID, clipID, err)
	}
	return nil
}

func updateInput(table, accountID, clipID, gameID string, st ClipStatus, subscriber bool) *dynamodb.UpdateItemInput {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "ACCOUNT#" + accountID},
		"SK": &types.AttributeValueMemberS{Value: "#CLIP#" + clipID},
	}
	statusVal := &types.AttributeValueMemberN{Value: strconv.Itoa(int(st))}

	if !subscriber || st != StatusPublished {
		return &dynamodb.UpdateItemInput{
			TableName:        aws.String(table),
			Key:              key,
			UpdateExpression: aws.String("SET #data.#status = :status"),
			ExpressionAttributeNames: map[string]string{
				"#data":   "data",
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": statusVal,
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		}
	}

	prefix := clipID
	if len(prefix) > clipPrefixLen {
		prefix = prefix[:clipPrefixLen]
	}
	return &dynamodb.UpdateItemInput{
		TableName: aws.String(table),
		Key:       key,
		UpdateExpression: aws.String(
			"SET #data.#status = :status, " +
				"#gsi1pk = :gsi1pk, #gsi1sk = :id, " +
				"#gsi2pk = :gsi2pk, #gsi2sk = :id, " +
				"#gsi3pk = :gsi3pk, #gsi3sk = :ulid, " +
				"#gsi4pk = :gsi4pk, #gsi4sk = :ulid"),
		ExpressionAttributeNames: map[string]string{
			"#data":   "data",
			"#status": "status",
			"#gsi1pk": "GSI1PK", "#gsi1sk": "GSI1SK",
			"#gsi2pk": "GSI2PK", "#gsi2sk": "GSI2SK",
			"#gsi3pk": "GSI3PK", "#gsi3sk": "GSI3SK",
			"#gsi4pk": "GSI4PK", "#gsi4sk": "GSI4SK",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": statusVal,
			":gsi1pk": &types.AttributeValueMemberS{Value: "RC#GAME#" + gameID + "#" + prefix},
			":gsi2pk": &types.AttributeValueMemberS{Value: "RC#" + prefix},
			":gsi3pk": &types.AttributeValueMemberS{Value: "PC#GAME#" + gameID},
			":gsi4pk": &types.AttributeValueMemberS{Value: "PC"},
			":id":     &types.AttributeValueMemberS{Value: clipID},
			":ulid":   &types.AttributeValueMemberS{Value: zeroULID},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}
}
