package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/picklemart/internal/cart"
	"github.com/picklemart/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamoUserRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewDynamoUserRepository(newFakeDynamo(), "Users")

	got, err := repo.GetByEmail(ctx, "missing@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@b.com", Username: "alice", PasswordHash: "hash-1"}))
	err = repo.Create(ctx, &models.User{Email: "a@b.com", Username: "mallory", PasswordHash: "hash-2"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	got, err = repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash-1", got.PasswordHash)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestDynamoCartRepositoryMergePolicy(t *testing.T) {
	ctx := context.Background()
	repo := NewDynamoCartRepository(newFakeDynamo(), "Cart")
	tick := time.Unix(1700000000, 0)
	repo.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	require.NoError(t, repo.Add(ctx, "user:a@b.com", cart.Line{Name: "Mango Pickle", Price: models.NewMoneyFromInt(150), Quantity: 1}, cart.PolicyMerge))
	require.NoError(t, repo.Add(ctx, "user:a@b.com", cart.Line{Name: "Banana Chips", Price: models.NewMoneyFromInt(100), Quantity: 1}, cart.PolicyMerge))
	require.NoError(t, repo.Add(ctx, "user:a@b.com", cart.Line{Name: "Mango Pickle", Price: models.NewMoneyFromInt(150), Quantity: 2}, cart.PolicyMerge))

	lines, err := repo.Get(ctx, "user:a@b.com")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Mango Pickle", lines[0].Name)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, "150.00", lines[0].Price.String())
	assert.Equal(t, "Banana Chips", lines[1].Name)
	assert.Equal(t, "550.00", cart.Total(lines).String())
}

func TestDynamoCartRepositoryMergesExactNameOnly(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := NewDynamoCartRepository(fake, "Cart")
	tick := time.Unix(1700000000, 0)
	repo.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	mango := cart.Line{Name: "Mango Pickle", Price: models.NewMoneyFromInt(150), Quantity: 1}
	underscored := cart.Line{Name: "Mango_Pickle", Price: models.NewMoneyFromInt(160), Quantity: 1}
	for _, line := range []cart.Line{mango, underscored, underscored, mango} {
		require.NoError(t, repo.Add(ctx, "user:a@b.com", line, cart.PolicyMerge))
	}

	lines, err := repo.Get(ctx, "user:a@b.com")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Mango Pickle", lines[0].Name)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Mango_Pickle", lines[1].Name)
	assert.Equal(t, 2, lines[1].Quantity)
	assert.Equal(t, 2, fake.count("Cart"))

	require.NoError(t, repo.Remove(ctx, "user:a@b.com", "Mango_Pickle"))
	lines, err = repo.Get(ctx, "user:a@b.com")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Mango Pickle", lines[0].Name)
}

func TestDynamoCartRepositoryExpiresIdleCart(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	now := time.Unix(1700000000, 0)
	repo := NewDynamoCartRepository(fake, "Cart").WithTTL(time.Hour)
	repo.now = func() time.Time { return now }

	mango := cart.Line{Name: "Mango Pickle", Price: models.NewMoneyFromInt(150), Quantity: 1}
	require.NoError(t, repo.Add(ctx, "session:idle", mango, cart.PolicyMerge))
	now = now.Add(59 * time.Minute)
	require.NoError(t, repo.Add(ctx, "session:busy", mango, cart.PolicyAppend))

	lines, err := repo.Get(ctx, "session:idle")
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	now = now.Add(2 * time.Minute)
	lines, err = repo.Get(ctx, "session:idle")
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, 1, fake.count("Cart"), "only the idle cart is purged")

	require.NoError(t, repo.Add(ctx, "session:idle", mango, cart.PolicyMerge))
	lines, err = repo.Get(ctx, "session:idle")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestDynamoCartRepositoryAppendRemoveClear(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := NewDynamoCartRepository(fake, "Cart")

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Add(ctx, "session:s1", cart.Line{Name: "Mango Pickle", Price: models.NewMoneyFromInt(150), Quantity: 1}, cart.PolicyAppend))
	}
	require.NoError(t, repo.Add(ctx, "session:s1", cart.Line{Name: "Murukku", Price: models.NewMoneyFromInt(90), Quantity: 1}, cart.PolicyAppend))
	require.NoError(t, repo.Add(ctx, "session:s2", cart.Line{Name: "Murukku", Price: models.NewMoneyFromInt(90), Quantity: 1}, cart.PolicyAppend))

	lines, err := repo.Get(ctx, "session:s1")
	require.NoError(t, err)
	assert.Len(t, lines, 3)

	require.NoError(t, repo.Remove(ctx, "session:s1", "Mango Pickle"))
	lines, err = repo.Get(ctx, "session:s1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Murukku", lines[0].Name)

	require.NoError(t, repo.Remove(ctx, "session:s1", "Not In Cart"))
	require.NoError(t, repo.Clear(ctx, "session:s1"))
	lines, err = repo.Get(ctx, "session:s1")
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, 1, fake.count("Cart"), "other carts must be untouched")
}

func TestDynamoCartRepositoryClearChunksBatches(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := NewDynamoCartRepository(fake, "Cart")
	for i := 0; i < 60; i++ {
		require.NoError(t, repo.Add(ctx, "session:big", cart.Line{Name: fmt.Sprintf("Item %d", i), Price: models.NewMoneyFromInt(1), Quantity: 1}, cart.PolicyMerge))
	}
	require.NoError(t, repo.Clear(ctx, "session:big"))
	assert.Equal(t, 0, fake.count("Cart"))
	assert.Equal(t, 3, fake.batchCalls)
}

func TestDynamoOrderRepositoryCreateLines(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := NewDynamoOrderRepository(fake, "Orders")
	now := time.Now()
	lines := []models.OrderLine{
		{OrderID: "20240101120000", LineID: "001#Mango_Pickle", Email: "a@b.com", Name: "alice", ItemName: "Mango Pickle", Price: models.NewMoneyFromInt(150), Quantity: 2, Timestamp: now},
		{OrderID: "20240101120000", LineID: "002#Murukku", Email: "a@b.com", Name: "alice", ItemName: "Murukku", Price: models.NewMoneyFromInt(90), Quantity: 1, Timestamp: now},
	}
	require.NoError(t, repo.CreateLines(ctx, lines))
	assert.Equal(t, 3, fake.count("Orders"))

	err := repo.CreateLines(ctx, lines[1:])
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, 3, fake.count("Orders"))
}

func TestDynamoOrderRepositoryRejectsTakenOrderID(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := NewDynamoOrderRepository(fake, "Orders")
	now := time.Now()
	first := []models.OrderLine{{OrderID: "20240101120000", LineID: "001#Mango_Pickle", Email: "alice@example.com", ItemName: "Mango Pickle", Quantity: 1, Timestamp: now}}
	second := []models.OrderLine{{OrderID: "20240101120000", LineID: "001#Lemon_Pickle", Email: "bob@example.com", ItemName: "Lemon Pickle", Quantity: 1, Timestamp: now}}

	require.NoError(t, repo.CreateLines(ctx, first))
	err := repo.CreateLines(ctx, second)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, 2, fake.count("Orders"))
}

func TestDynamoOrderRepositoryRejectsOversizedOrder(t *testing.T) {
	repo := NewDynamoOrderRepository(newFakeDynamo(), "Orders")
	lines := make([]models.OrderLine, dynamoOrderLineLimit+1)
	for i := range lines {
		lines[i] = models.OrderLine{OrderID: "o1", LineID: fmt.Sprintf("%03d#x", i+1)}
	}
	err := repo.CreateLines(context.Background(), lines)
	assert.ErrorIs(t, err, ErrLedgerTooLarge)
}

func TestDynamoOrderRepositoryWriteFailureLeavesNothing(t *testing.T) {
	fake := newFakeDynamo()
	fake.transactErr = errors.New("throttled")
	repo := NewDynamoOrderRepository(fake, "Orders")
	err := repo.CreateLines(context.Background(), []models.OrderLine{{OrderID: "o1", LineID: "001#x"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, 0, fake.count("Orders"))
}

func TestIsConditionalCheckFailed(t *testing.T) {
	assert.False(t, isConditionalCheckFailed(nil))
	assert.True(t, isConditionalCheckFailed(fmt.Errorf("wrap: %w", &types.ConditionalCheckFailedException{})))
	assert.True(t, isConditionalCheckFailed(&types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("None")}, {Code: aws.String("ConditionalCheckFailed")}},
	}))
	assert.False(t, isConditionalCheckFailed(&types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("ThrottlingError")}},
	}))
}
