package cloud

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/repository"
)

// fakeDynamo keeps quotation items in memory and honours the conditions the
// store sends.
type fakeDynamo struct {
	mu      sync.Mutex
	items   map[string]quotationItem
	queries []*dynamodb.QueryInput
}

func newFakeDynamo() *fakeDynamo { return &fakeDynamo{items: map[string]quotationItem{}} }

func keyOf(key map[string]types.AttributeValue) string {
	return key["id"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var it quotationItem
	if err := attributevalue.UnmarshalMap(in.Item, &it); err != nil {
		return nil, err
	}
	if _, ok := f.items[it.ID]; ok && aws.ToString(in.ConditionExpression) != "" {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	f.items[it.ID] = it
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[keyOf(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: av}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[keyOf(in.Key)]
	pid := in.ExpressionAttributeValues[":pid"].(*types.AttributeValueMemberS).Value
	if !ok || it.PartnerID != pid {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition")}
	}
	it.Status = in.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS).Value
	f.items[it.ID] = it
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return nil, err
	}
	return &dynamodb.UpdateItemOutput{Attributes: av}, nil
}

// Query serves one item per page so the store has to follow pagination.
func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, in)
	pid := in.ExpressionAttributeValues[":pid"].(*types.AttributeValueMemberS).Value

	var matched []quotationItem
	for _, it := range f.items {
		if it.PartnerID == pid {
			matched = append(matched, it)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].DateSubmitted > matched[j].DateSubmitted })

	start := 0
	if in.ExclusiveStartKey != nil {
		last := keyOf(in.ExclusiveStartKey)
		for i, it := range matched {
			if it.ID == last {
				start = i + 1
			}
		}
	}
	out := &dynamodb.QueryOutput{}
	if start < len(matched) {
		av, err := attributevalue.MarshalMap(matched[start])
		if err != nil {
			return nil, err
		}
		out.Items = []map[string]types.AttributeValue{av}
		if start+1 < len(matched) {
			out.LastEvaluatedKey = map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: matched[start].ID}}
		}
	}
	return out, nil
}

var t0 = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func quotation(id, partner string, at time.Time) domain.Quotation {
	return domain.Quotation{
		ID: id, PartnerID: partner, CustomerName: "Meera", CustomerEmail: "meera@c.test", CustomerPhone: "98450",
		SystemSize: 5, PanelBrand: "tata", InverterBrand: "luminous", WiringBrand: "polycab",
		TotalCost: 215000, Status: domain.StatusNew, DateSubmitted: at,
	}
}

func TestDynamoDBQuotations_CreateListNewestFirst(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	store := NewDynamoDBQuotations(fake, "partner_quotations")

	for i, id := range []string{"q1", "q2", "q3"} {
		_, err := store.Create(ctx, quotation(id, "p1", t0.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, quotation("q-other", "p2", t0))
	require.NoError(t, err)

	list, err := store.ListByPartner(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "q3", list[0].ID)
	assert.Equal(t, "q1", list[2].ID)
	assert.True(t, list[0].DateSubmitted.Equal(t0.Add(2*time.Minute)))
	assert.Equal(t, 215000.0, list[0].TotalCost)

	require.NotEmpty(t, fake.queries)
	q := fake.queries[0]
	assert.Equal(t, PartnerDateIndex, aws.ToString(q.IndexName))
	assert.False(t, aws.ToBool(q.ScanIndexForward))
	assert.Len(t, fake.queries, 3)
}

func TestDynamoDBQuotations_DuplicateID(t *testing.T) {
	store := NewDynamoDBQuotations(newFakeDynamo(), "t")
	_, err := store.Create(context.Background(), quotation("q1", "p1", t0))
	require.NoError(t, err)
	_, err = store.Create(context.Background(), quotation("q1", "p1", t0))
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestDynamoDBQuotations_StatusScopedToPartner(t *testing.T) {
	ctx := context.Background()
	store := NewDynamoDBQuotations(newFakeDynamo(), "t")
	_, err := store.Create(ctx, quotation("q1", "p1", t0))
	require.NoError(t, err)

	updated, err := store.UpdateStatus(ctx, "p1", "q1", domain.StatusConverted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConverted, updated.Status)

	_, err = store.UpdateStatus(ctx, "p2", "q1", domain.StatusLost)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.UpdateStatus(ctx, "p1", "missing", domain.StatusLost)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = store.Get(ctx, "p2", "q1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	got, err := store.Get(ctx, "p1", "q1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConverted, got.Status)
}

func TestQuotationItem_DateSortsLexically(t *testing.T) {
	a := toQuotationItem(quotation("a", "p", t0))
	b := toQuotationItem(quotation("b", "p", t0.Add(time.Second)))
	assert.Less(t, a.DateSubmitted, b.DateSubmitted)
	assert.True(t, fromQuotationItem(a).DateSubmitted.Equal(t0))
}

type fakeSNS struct{ inputs []*sns.PublishInput }

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestSNSNotifier_QuotationAlert(t *testing.T) {
	fake := &fakeSNS{}
	n := NewSNSNotifier(fake, "arn:aws:sns:ap-south-1:123:sales")

	subject, message := QuotationAlert(quotation("q9", "p1", t0))
	require.NoError(t, n.SendAlert(context.Background(), subject, message))

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "arn:aws:sns:ap-south-1:123:sales", aws.ToString(in.TopicArn))
	assert.Equal(t, "New quotation: 5 kW for Meera", aws.ToString(in.Subject))
	assert.Contains(t, aws.ToString(in.Message), "Total: ₹2,15,000")
	assert.Contains(t, aws.ToString(in.Message), "tata / luminous / polycab")
}

func TestLeadAlert_SkipsEmptyFields(t *testing.T) {
	_, msg := LeadAlert(domain.QuoteRequest{Name: "Asha", Email: "a@x.test", Phone: "1", Source: domain.LeadSourceWeb})
	assert.NotContains(t, msg, "Location")
	assert.NotContains(t, msg, "Monthly bill")

	_, msg = LeadAlert(domain.QuoteRequest{Name: "Asha", Location: "pune", MonthlyBill: 4500, Source: domain.LeadSourceMQTT, Message: "call after 6"})
	assert.True(t, strings.HasPrefix(msg, "Quote Request (mqtt)"))
	assert.Contains(t, msg, "Monthly bill: ₹4,500")
	assert.Contains(t, msg, "call after 6")
}

func TestQuotationKey(t *testing.T) {
	assert.Equal(t, "quotations/p1/q1.json", QuotationKey("p1", "q1"))
}
