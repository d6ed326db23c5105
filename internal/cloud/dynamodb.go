package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/repository"
)

// PartnerDateIndex is the GSI used to list a partner's quotations by submission time.
const PartnerDateIndex = "partner_id-date_submitted-index"

// DynamoDBAPI is the subset of the DynamoDB client the quotation store uses.
type DynamoDBAPI interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// quotationItem is the DynamoDB structure for partner quotations.
//
// Table: PK id. GSI partner_id-date_submitted-index: partner_id (hash),
// date_submitted (range, RFC3339Nano so it sorts lexically).
type quotationItem struct {
	ID            string  `dynamodbav:"id"`
	PartnerID     string  `dynamodbav:"partner_id"`
	CustomerName  string  `dynamodbav:"customer_name"`
	CustomerEmail string  `dynamodbav:"customer_email"`
	CustomerPhone string  `dynamodbav:"customer_phone"`
	SystemSize    int     `dynamodbav:"system_size"`
	PanelBrand    string  `dynamodbav:"panel_brand"`
	InverterBrand string  `dynamodbav:"inverter_brand"`
	WiringBrand   string  `dynamodbav:"wiring_brand"`
	TotalCost     float64 `dynamodbav:"total_cost"`
	Status        string  `dynamodbav:"status"`
	DateSubmitted string  `dynamodbav:"date_submitted"`
}

// DynamoDBQuotations stores partner quotations in DynamoDB.
type DynamoDBQuotations struct {
	svc   DynamoDBAPI
	table string
}

// NewDynamoDBClient builds a DynamoDB client, pointing it at endpoint when set.
func NewDynamoDBClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

func NewDynamoDBQuotations(svc DynamoDBAPI, table string) *DynamoDBQuotations {
	return &DynamoDBQuotations{svc: svc, table: table}
}

func (c *DynamoDBQuotations) Create(ctx context.Context, q domain.Quotation) (domain.Quotation, error) {
	item, err := attributevalue.MarshalMap(toQuotationItem(q))
	if err != nil {
		return domain.Quotation{}, fmt.Errorf("failed to marshal quotation: %w", err)
	}

	_, err = c.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(c.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return domain.Quotation{}, fmt.Errorf("%w: quotation %s", repository.ErrDuplicate, q.ID)
		}
		return domain.Quotation{}, fmt.Errorf("failed to put quotation: %w", err)
	}
	return q, nil
}

// ListByPartner queries the partner/date index newest first, following pagination.
func (c *DynamoDBQuotations) ListByPartner(ctx context.Context, partnerID string) ([]domain.Quotation, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		IndexName:              aws.String(PartnerDateIndex),
		KeyConditionExpression: aws.String("partner_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: partnerID},
		},
		ScanIndexForward: aws.Bool(false), // newest first
	}

	out := []domain.Quotation{}
	paginator := dynamodb.NewQueryPaginator(c.svc, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query quotations: %w", err)
		}
		var items []quotationItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quotations: %w", err)
		}
		for _, it := range items {
			out = append(out, fromQuotationItem(it))
		}
	}
	return out, nil
}

func (c *DynamoDBQuotations) Get(ctx context.Context, partnerID, id string) (domain.Quotation, error) {
	res, err := c.svc.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.table),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Quotation{}, fmt.Errorf("failed to get quotation: %w", err)
	}
	if len(res.Item) == 0 {
		return domain.Quotation{}, repository.ErrNotFound
	}
	var it quotationItem
	if err := attributevalue.UnmarshalMap(res.Item, &it); err != nil {
		return domain.Quotation{}, fmt.Errorf("failed to unmarshal quotation: %w", err)
	}
	if it.PartnerID != partnerID {
		return domain.Quotation{}, repository.ErrNotFound
	}
	return fromQuotationItem(it), nil
}

// UpdateStatus sets the status only when the item exists and belongs to partnerID.
func (c *DynamoDBQuotations) UpdateStatus(ctx context.Context, partnerID, id string, status domain.QuotationStatus) (domain.Quotation, error) {
	res, err := c.svc.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(c.table),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		ConditionExpression: aws.String("attribute_exists(#id) AND #partner_id = :pid"),
		UpdateExpression:    aws.String("SET #status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#partner_id": "partner_id",
			"#status":     "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid":    &types.AttributeValueMemberS{Value: partnerID},
			":status": &types.AttributeValueMemberS{Value: string(status)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return domain.Quotation{}, repository.ErrNotFound
		}
		return domain.Quotation{}, fmt.Errorf("failed to update quotation status: %w", err)
	}
	var it quotationItem
	if err := attributevalue.UnmarshalMap(res.Attributes, &it); err != nil {
		return domain.Quotation{}, fmt.Errorf("failed to unmarshal quotation: %w", err)
	}
	return fromQuotationItem(it), nil
}

func toQuotationItem(q domain.Quotation) quotationItem {
	return quotationItem{
		ID:            q.ID,
		PartnerID:     q.PartnerID,
		CustomerName:  q.CustomerName,
		CustomerEmail: q.CustomerEmail,
		CustomerPhone: q.CustomerPhone,
		SystemSize:    q.SystemSize,
		PanelBrand:    q.PanelBrand,
		InverterBrand: q.InverterBrand,
		WiringBrand:   q.WiringBrand,
		TotalCost:     q.TotalCost,
		Status:        string(q.Status),
		DateSubmitted: q.DateSubmitted.UTC().Format(time.RFC3339Nano),
	}
}

func fromQuotationItem(it quotationItem) domain.Quotation {
	submitted, _ := time.Parse(time.RFC3339Nano, it.DateSubmitted)
	return domain.Quotation{
		ID:            it.ID,
		PartnerID:     it.PartnerID,
		CustomerName:  it.CustomerName,
		CustomerEmail: it.CustomerEmail,
		CustomerPhone: it.CustomerPhone,
		SystemSize:    it.SystemSize,
		PanelBrand:    it.PanelBrand,
		InverterBrand: it.InverterBrand,
		WiringBrand:   it.WiringBrand,
		TotalCost:     it.TotalCost,
		Status:        domain.QuotationStatus(it.Status),
		DateSubmitted: submitted,
	}
}
