package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/email"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ProfileRepo provides typed DynamoDB operations for the profiles table.
// PK: profile_id. GSI: email_lower-index.
type ProfileRepo struct {
	client    API
	tableName string
}

func NewProfileRepo(client API, tableName string) *ProfileRepo {
	return &ProfileRepo{client: client, tableName: tableName}
}

func (r *ProfileRepo) Get(ctx context.Context, profileID string) (*domain.Profile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldProfileID, profileID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	var p domain.Profile
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, addr string) (*domain.Profile, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexEmailLower),
		KeyConditionExpression:    aws.String("#e = :e"),
		ExpressionAttributeNames:  map[string]string{"#e": fieldEmailLower},
		ExpressionAttributeValues: map[string]types.AttributeValue{":e": &types.AttributeValueMemberS{Value: email.Normalize(addr)}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	var p domain.Profile
	if err := attributevalue.UnmarshalMap(out.Items[0], &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) Insert(ctx context.Context, p *domain.Profile) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + fieldProfileID + ")"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("profile %s exists: %w", p.ProfileID, domain.ErrConflict)
	}
	return err
}

func (r *ProfileRepo) UpdateRole(ctx context.Context, profileID, role string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldRole:      role,
		fieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldProfileID, profileID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(" + fieldProfileID + ")"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	return err
}

// ReassignID moves the row at oldID under newID in one transaction. The write
// is refused with domain.ErrConflict if newID is already taken, or if oldID is
// gone or was modified after it was read.
func (r *ProfileRepo) ReassignID(ctx context.Context, oldID, newID, role string) error {
	p, err := r.Get(ctx, oldID)
	if err != nil {
		return err
	}
	unchanged, err := unchangedSince(p.UpdatedAt)
	if err != nil {
		return err
	}
	p.ProfileID = newID
	p.Role = role
	p.UpdatedAt = time.Now().UTC()
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(" + fieldProfileID + ")"),
			}},
			{Delete: &types.Delete{
				TableName:                 aws.String(r.tableName),
				Key:                       strKey(fieldProfileID, oldID),
				ConditionExpression:       aws.String("attribute_exists(#id) AND " + unchanged.Expr),
				ExpressionAttributeNames:  map[string]string{"#id": fieldProfileID, "#upd": fieldUpdatedAt},
				ExpressionAttributeValues: unchanged.Values,
			}},
		},
	})
	if isTransactionCanceled(err) {
		return fmt.Errorf("reassign profile %s to %s: %w", oldID, newID, domain.ErrConflict)
	}
	return err
}

// unchangedSince builds the condition that updated_at still holds the value
// read. Rows written without updated_at match only while it stays absent.
func unchangedSince(seen time.Time) (*updateExpr, error) {
	if seen.IsZero() {
		return &updateExpr{Expr: "attribute_not_exists(#upd)"}, nil
	}
	av, err := attributevalue.Marshal(seen)
	if err != nil {
		return nil, fmt.Errorf("marshal updated_at: %w", err)
	}
	return &updateExpr{
		Expr:   "#upd = :seen",
		Values: map[string]types.AttributeValue{":seen": av},
	}, nil
}
