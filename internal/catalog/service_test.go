package catalog

import (
	"context"
	"testing"

	"orange-brew/internal/apperr"
	"orange-brew/internal/auth"
)

type fakeStore struct {
	products map[int64]*Product
	nextID   int64
	reads    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: map[int64]*Product{}}
}

func (f *fakeStore) ListProducts(_ context.Context) ([]Product, error) {
	f.reads++
	var out []Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) GetProduct(_ context.Context, id int64) (*Product, error) {
	f.reads++
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("Product %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, in ProductInput) (*Product, error) {
	f.nextID++
	p := &Product{ID: f.nextID, Name: in.Name, PriceCents: in.PriceCents,
		Category: in.Category, Description: in.Description, Image: in.Image}
	f.products[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UpdateProduct(_ context.Context, id int64, in ProductInput) (*Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("Product %d not found", id)
	}
	p.Name, p.PriceCents = in.Name, in.PriceCents
	p.Category, p.Description, p.Image = in.Category, in.Description, in.Image
	cp := *p
	return &cp, nil
}

func (f *fakeStore) DeleteProduct(_ context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return apperr.NotFound("Product %d not found", id)
	}
	delete(f.products, id)
	return nil
}

// memCache is an in-process stand-in for the redis cache.
type memCache struct {
	list     []Product
	hasList  bool
	products map[int64]*Product
}

func newMemCache() *memCache {
	return &memCache{products: map[int64]*Product{}}
}

func (c *memCache) GetList(_ context.Context) ([]Product, bool) { return c.list, c.hasList }

func (c *memCache) SetList(_ context.Context, ps []Product) { c.list, c.hasList = ps, true }

func (c *memCache) GetProduct(_ context.Context, id int64) (*Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

func (c *memCache) SetProduct(_ context.Context, p *Product) { c.products[p.ID] = p }

func (c *memCache) Invalidate(_ context.Context, id int64) {
	c.list, c.hasList = nil, false
	delete(c.products, id)
}

var (
	cafeAdmin = auth.Identity{UserID: 1, Role: auth.RoleAdmin}
	cafeUser  = auth.Identity{UserID: 2, Role: auth.RoleUser}
)

func seedProduct(t *testing.T, svc *Service) *Product {
	t.Helper()
	p, err := svc.Create(context.Background(), cafeAdmin, ProductInput{
		Name: "Orange Cold Brew", PriceCents: 450, Category: "coffee",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func TestListCachesThrough(t *testing.T) {
	store := newFakeStore()
	svc := &Service{Store: store, Cache: newMemCache()}
	seedProduct(t, svc)
	store.reads = 0

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if store.reads != 1 {
		t.Fatalf("store reads = %d, want 1 (second list served from cache)", store.reads)
	}
}

func TestProductCachesThrough(t *testing.T) {
	store := newFakeStore()
	svc := &Service{Store: store, Cache: newMemCache()}
	p := seedProduct(t, svc)
	store.reads = 0

	for i := 0; i < 3; i++ {
		got, err := svc.Product(context.Background(), p.ID)
		if err != nil {
			t.Fatalf("Product: %v", err)
		}
		if got.PriceCents != 450 {
			t.Fatalf("price = %d, want 450", got.PriceCents)
		}
	}
	if store.reads != 1 {
		t.Fatalf("store reads = %d, want 1", store.reads)
	}
}

func TestProductNotFound(t *testing.T) {
	svc := &Service{Store: newFakeStore(), Cache: newMemCache()}
	_, err := svc.Product(context.Background(), 42)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestWritesInvalidateCache(t *testing.T) {
	store := newFakeStore()
	cache := newMemCache()
	svc := &Service{Store: store, Cache: cache}
	p := seedProduct(t, svc)

	// warm both cache entries
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := svc.Product(context.Background(), p.ID); err != nil {
		t.Fatalf("Product: %v", err)
	}

	if _, err := svc.Update(context.Background(), cafeAdmin, p.ID, ProductInput{
		Name: "Orange Cold Brew", PriceCents: 500,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if cache.hasList {
		t.Fatal("list cache survived update")
	}
	if _, ok := cache.products[p.ID]; ok {
		t.Fatal("product cache survived update")
	}

	got, err := svc.Product(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Product after update: %v", err)
	}
	if got.PriceCents != 500 {
		t.Fatalf("price = %d, want 500 after update", got.PriceCents)
	}
}

func TestWriteValidation(t *testing.T) {
	svc := &Service{Store: newFakeStore()}
	cases := []ProductInput{
		{Name: "", PriceCents: 450},
		{Name: "  ", PriceCents: 450},
		{Name: "Latte", PriceCents: 0},
		{Name: "Latte", PriceCents: -100},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), cafeAdmin, in); apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("%+v: err = %v, want validation", in, err)
		}
	}
}

func TestWritesRequireAdmin(t *testing.T) {
	store := newFakeStore()
	svc := &Service{Store: store}
	in := ProductInput{Name: "Latte", PriceCents: 450}

	if _, err := svc.Create(context.Background(), cafeUser, in); apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("Create err = %v, want authorization", err)
	}
	p := seedProduct(t, svc)
	if _, err := svc.Update(context.Background(), cafeUser, p.ID, in); apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("Update err = %v, want authorization", err)
	}
	if err := svc.Delete(context.Background(), cafeUser, p.ID); apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("Delete err = %v, want authorization", err)
	}

	if err := svc.Delete(context.Background(), cafeAdmin, p.ID); err != nil {
		t.Fatalf("admin Delete: %v", err)
	}
	if len(store.products) != 0 {
		t.Fatalf("products left after delete: %d", len(store.products))
	}
}
