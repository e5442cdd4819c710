package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-crm-service/internal/customer/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/pkg/database/databasetest"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *PGRepository) {
	t.Helper()
	rows := []struct{ id, name, email, phone string }{
		{"c1", "Alice Smith", "alice@example.com", "+1234567890"},
		{"c2", "Bob Stone", "bob@shop.io", "123-456-7890"},
		{"c3", "Carol Smithers", "carol@example.com", ""},
	}
	for i, r := range rows {
		ts := base.Add(time.Duration(i) * 24 * time.Hour)
		require.NoError(t, repo.Create(context.Background(), &model.Customer{
			BaseModel: model.BaseModel{ID: r.id, CreatedAt: ts, UpdatedAt: ts},
			Name:      r.name, Email: r.email, Phone: r.phone,
		}))
	}
}

func ids(cs []model.Customer) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestPGRepository_FindByID(t *testing.T) {
	repo := NewPGRepository(databasetest.New(t))
	seed(t, repo)

	c, err := repo.FindByID(context.Background(), "c2")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Bob Stone", c.Name)
	assert.True(t, c.CreatedAt.Equal(base.Add(24*time.Hour)))

	missing, err := repo.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPGRepository_FindAllFilters(t *testing.T) {
	repo := NewPGRepository(databasetest.New(t))
	seed(t, repo)
	ctx := context.Background()
	day2 := base.Add(24 * time.Hour)

	tests := []struct {
		name    string
		filters dto.CustomerFilters
		want    []string
	}{
		{"no filters", dto.CustomerFilters{}, []string{"c1", "c2", "c3"}},
		{"name icontains", dto.CustomerFilters{NameIContains: "SMITH"}, []string{"c1", "c3"}},
		{"email icontains", dto.CustomerFilters{EmailIContains: "example"}, []string{"c1", "c3"}},
		{"created gte", dto.CustomerFilters{CreatedAtGte: &day2}, []string{"c2", "c3"}},
		{"created lte", dto.CustomerFilters{CreatedAtLte: &day2}, []string{"c1", "c2"}},
		{"phone prefix", dto.CustomerFilters{PhonePattern: "+1"}, []string{"c1"}},
		{"search name or email", dto.CustomerFilters{SearchQuery: "shop"}, []string{"c2"}},
		{"order by name desc", dto.CustomerFilters{OrderBy: []string{"-name"}}, []string{"c3", "c2", "c1"}},
		{"paginated", dto.CustomerFilters{Offset: 1, Limit: 1}, []string{"c2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count, err := repo.FindAll(ctx, &tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			if tt.filters.Limit == 0 {
				assert.Equal(t, len(tt.want), count)
			}
		})
	}
}

func TestPGRepository_CountAndUnique(t *testing.T) {
	repo := NewPGRepository(databasetest.New(t))
	seed(t, repo)
	ctx := context.Background()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	unique, err := repo.IsEmailUnique(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, unique)

	unique, err = repo.IsEmailUnique(ctx, "dave@example.com")
	require.NoError(t, err)
	assert.True(t, unique)
}

func TestPGRepository_FindByIDs(t *testing.T) {
	repo := NewPGRepository(databasetest.New(t))
	seed(t, repo)

	got, err := repo.FindByIDs(context.Background(), []string{"c1", "c3", "zz"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c3"}, ids(got))

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPGRepository_CreateDuplicateEmail(t *testing.T) {
	repo := NewPGRepository(databasetest.New(t))
	seed(t, repo)

	err := repo.Create(context.Background(), &model.Customer{
		BaseModel: model.BaseModel{ID: "c9", CreatedAt: base, UpdatedAt: base},
		Name:      "Copy", Email: "alice@example.com",
	})
	assert.Error(t, err)
}
