package dynamo

import (
	"context"
	"fmt"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// VerificationRepo stores verification records.
// PK: record_id. GSI code-record_id-index orders records sharing a code newest first.
type VerificationRepo struct {
	client    API
	tableName string
}

func NewVerificationRepo(client API, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

func (r *VerificationRepo) Put(ctx context.Context, v *domain.VerificationRecord) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + fieldRecordID + ")"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("verification %s exists: %w", v.ID, domain.ErrConflict)
	}
	return err
}

// FindLatestUnused walks the code index newest first and returns the first
// unused record matching the token, or the exact email when no token is given.
// The filter runs after each page is read, so pages are followed until a match.
func (r *VerificationRepo) FindLatestUnused(ctx context.Context, q domain.VerificationLookup) (*domain.VerificationRecord, error) {
	names := map[string]string{"#code": fieldCode, "#used": fieldUsed}
	values := map[string]types.AttributeValue{
		":code":  &types.AttributeValueMemberS{Value: q.Code},
		":false": &types.AttributeValueMemberBOOL{Value: false},
	}
	filter := "#used = :false AND "
	if q.Token != "" {
		names["#tok"] = fieldToken
		values[":tok"] = &types.AttributeValueMemberS{Value: q.Token}
		filter += "#tok = :tok"
	} else {
		names["#email"] = fieldEmail
		values[":email"] = &types.AttributeValueMemberS{Value: q.Email}
		filter += "#email = :email"
	}

	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexCodeRecordID),
		KeyConditionExpression:    aws.String("#code = :code"),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(false),
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if len(out.Items) == 0 {
			continue
		}
		var v domain.VerificationRecord
		if err := attributevalue.UnmarshalMap(out.Items[0], &v); err != nil {
			return nil, err
		}
		return &v, nil
	}
	return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
}

// MarkUsed sets used=true only if it is still false. It reports false when
// another request already burned the record.
func (r *VerificationRepo) MarkUsed(ctx context.Context, recordID string) (bool, error) {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldRecordID, recordID),
		UpdateExpression:    aws.String("SET #used = :true"),
		ConditionExpression: aws.String("attribute_exists(#id) AND #used = :false"),
		ExpressionAttributeNames: map[string]string{
			"#id":   fieldRecordID,
			"#used": fieldUsed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":  &types.AttributeValueMemberBOOL{Value: true},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if isConditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
