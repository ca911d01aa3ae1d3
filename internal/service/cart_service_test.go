package service

import (
	"context"
	"testing"

	"github.com/picklemart/internal/cart"
	"github.com/picklemart/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartServiceMergePolicy(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(repository.NewMemoryCartRepository(), cart.PolicyMerge)

	for i := 0; i < 2; i++ {
		_, err := svc.Add(ctx, "user:a@x.com", AddToCartInput{Name: "Mango Pickle", Price: "150"})
		require.NoError(t, err)
	}
	view, err := svc.View(ctx, "user:a@x.com")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.Equal(t, "300.00", view.Total.String())
	assert.Equal(t, 2, view.Count)
}

func TestCartServiceAppendPolicy(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(repository.NewMemoryCartRepository(), cart.PolicyAppend)

	_, err := svc.Add(ctx, "session:s1", AddToCartInput{Name: "Mango Pickle", Price: "150"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "session:s1", AddToCartInput{Name: "Mango Pickle", Price: "150", Quantity: "3"})
	require.NoError(t, err)

	view, err := svc.View(ctx, "session:s1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, 4, view.Count)
	assert.Equal(t, "600.00", view.Total.String())

	require.NoError(t, svc.Remove(ctx, "session:s1", "Unknown"))
	view, _ = svc.View(ctx, "session:s1")
	assert.Len(t, view.Lines, 2)

	require.NoError(t, svc.Remove(ctx, "session:s1", "Mango Pickle"))
	view, _ = svc.View(ctx, "session:s1")
	assert.Empty(t, view.Lines)
	assert.Equal(t, "0.00", view.Total.String())
}

func TestCartServiceRejectsInvalidItems(t *testing.T) {
	svc := NewCartService(repository.NewMemoryCartRepository(), cart.PolicyMerge)
	cases := []AddToCartInput{
		{Name: "", Price: "150"},
		{Name: "Mango Pickle", Price: "abc"},
		{Name: "Mango Pickle", Price: "-1"},
		{Name: "Mango Pickle", Price: "150", Quantity: "0"},
		{Name: "Mango Pickle", Price: "150", Quantity: "x"},
		{Name: "Mango Pickle", Price: "150", Quantity: "1000"},
	}
	for _, input := range cases {
		_, err := svc.Add(context.Background(), "session:s1", input)
		assert.ErrorIs(t, err, ErrInvalidCartItem, "input %+v", input)
	}
	_, err := svc.Add(context.Background(), "", AddToCartInput{Name: "Mango Pickle", Price: "150"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
