package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// IdentityRepo backs the identity directory.
// PK: email_lower, so there is at most one identity per address.
type IdentityRepo struct {
	client    API
	tableName string
}

func NewIdentityRepo(client API, tableName string) *IdentityRepo {
	return &IdentityRepo{client: client, tableName: tableName}
}

func (r *IdentityRepo) GetByEmail(ctx context.Context, emailLower string) (*domain.Identity, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmailLower, emailLower),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	var ident domain.Identity
	if err := attributevalue.UnmarshalMap(out.Item, &ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

func (r *IdentityRepo) Create(ctx context.Context, ident *domain.Identity) error {
	item, err := attributevalue.MarshalMap(ident)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + fieldEmailLower + ")"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("identity for %s exists: %w", ident.Email, domain.ErrConflict)
	}
	return err
}

func (r *IdentityRepo) UpdateRole(ctx context.Context, emailLower, role string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldRole:      role,
		fieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmailLower, emailLower),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(" + fieldEmailLower + ")"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	return err
}
