package storefront

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindAddItem(t *testing.T) {
	tests := []struct {
		name        string
		form        url.Values
		want        addItemForm
		wantMessage string
	}{
		{
			name: "quantity defaults to one",
			form: url.Values{"product_id": {" p1 "}},
			want: addItemForm{ProductID: "p1", Quantity: 1},
		},
		{
			name: "explicit quantity",
			form: url.Values{"product_id": {"p1"}, "quantity": {"3"}},
			want: addItemForm{ProductID: "p1", Quantity: 3},
		},
		{
			name:        "missing product",
			form:        url.Values{"quantity": {"3"}},
			wantMessage: "product_id: This field is required",
		},
		{
			name:        "non numeric quantity",
			form:        url.Values{"product_id": {"p1"}, "quantity": {"two"}},
			wantMessage: "quantity: Must be numeric",
		},
		{
			name:        "zero quantity",
			form:        url.Values{"product_id": {"p1"}, "quantity": {"0"}},
			wantMessage: "quantity: Must be at least 1",
		},
		{
			name:        "quantity above the cap",
			form:        url.Values{"product_id": {"p1"}, "quantity": {"1000"}},
			wantMessage: "quantity: Must be at most 999",
		},
		{
			name:        "overlong product id",
			form:        url.Values{"product_id": {strings.Repeat("x", 65)}},
			wantMessage: "product_id: Must be at most 64 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bindAddItem(sessionRequest(http.MethodPost, "/cart/add", tt.form))
			if tt.wantMessage != "" {
				require.Error(t, err)
				assert.True(t, domain.IsCode(err, domain.EINVALID))
				assert.Equal(t, tt.wantMessage, domain.ErrorMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindUpdateItem(t *testing.T) {
	tests := []struct {
		name        string
		quantity    []string
		want        int
		wantMessage string
	}{
		{name: "zero removes the line", quantity: []string{"0"}, want: 0},
		{name: "upper bound", quantity: []string{"999"}, want: 999},
		{name: "negative rejected", quantity: []string{"-2"}, wantMessage: "quantity: Must be at least 0"},
		{name: "above cap rejected", quantity: []string{"1000"}, wantMessage: "quantity: Must be at most 999"},
		{name: "missing rejected", wantMessage: "quantity: Must be numeric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"product_id": {"p1"}}
			if tt.quantity != nil {
				form["quantity"] = tt.quantity
			}
			got, err := bindUpdateItem(sessionRequest(http.MethodPost, "/cart/update", form))
			if tt.wantMessage != "" {
				require.Error(t, err)
				assert.True(t, domain.IsCode(err, domain.EINVALID))
				assert.Equal(t, tt.wantMessage, domain.ErrorMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Quantity)
		})
	}
}

func TestBindRemoveItem(t *testing.T) {
	_, err := bindRemoveItem(sessionRequest(http.MethodPost, "/cart/remove", url.Values{}))
	assert.True(t, domain.IsCode(err, domain.EINVALID))
}

func TestBindDiscount(t *testing.T) {
	got, err := bindDiscount(sessionRequest(http.MethodPost, "/cart/discount", url.Values{"code": {"  ww10 "}}))
	require.NoError(t, err)
	assert.Equal(t, "ww10", got.Code)

	got, err = bindDiscount(sessionRequest(http.MethodPost, "/cart/discount", url.Values{}))
	require.NoError(t, err, "blank codes are accepted and ignored by the store")
	assert.Empty(t, got.Code)

	_, err = bindDiscount(sessionRequest(http.MethodPost, "/cart/discount", url.Values{"code": {strings.Repeat("A", 33)}}))
	assert.True(t, domain.IsCode(err, domain.EINVALID))
}
