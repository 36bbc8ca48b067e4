package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/qc-admin/internal/config"
	"github.com/magabrotheeeer/qc-admin/internal/gateway"
	"github.com/magabrotheeeer/qc-admin/internal/models"
)

// fakeBackend поднимает учебный бэкенд с компаниями и продуктами в памяти.
// Удаление компании каскадно удаляет её продукты, как делает настоящий бэкенд.
type fakeBackend struct {
	mu        sync.Mutex
	nextID    int
	companies []models.Company
	products  []models.Product
}

func (f *fakeBackend) router() http.Handler {
	r := chi.NewRouter()

	r.Get("/companies", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		render.JSON(w, req, f.companies)
	})
	r.Post("/companies", func(w http.ResponseWriter, req *http.Request) {
		var input models.CompanyInput
		_ = json.NewDecoder(req.Body).Decode(&input)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID++
		company := models.Company{ID: f.nextID, Name: input.Name, Description: input.Description}
		f.companies = append(f.companies, company)
		render.Status(req, http.StatusCreated)
		render.JSON(w, req, company)
	})
	r.Delete("/companies/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(req, "id"))

		f.mu.Lock()
		defer f.mu.Unlock()
		kept := f.companies[:0]
		for _, company := range f.companies {
			if company.ID != id {
				kept = append(kept, company)
			}
		}
		f.companies = kept

		keptProducts := f.products[:0]
		for _, product := range f.products {
			if product.CompanyID != id {
				keptProducts = append(keptProducts, product)
			}
		}
		f.products = keptProducts
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/products", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		render.JSON(w, req, f.products)
	})

	return r
}

func newBackendGateway(t *testing.T, backend *fakeBackend) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(backend.router())
	t.Cleanup(srv.Close)
	return gateway.New(srv.URL, config.HTTPClient{}, testLogger())
}

func TestCreate_CollectionMatchesIndependentList(t *testing.T) {
	backend := &fakeBackend{}
	gw := newBackendGateway(t, backend)
	ctrl := Companies(testLogger(), gw)

	_, err := ctrl.Create(context.Background(), models.CompanyInput{Name: "Acme"})
	require.NoError(t, err)
	_, err = ctrl.Create(context.Background(), models.CompanyInput{Name: "Globex"})
	require.NoError(t, err)

	// Независимый контроллер видит то же самое, что осело в зеркале
	fresh, err := Companies(testLogger(), gw).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, ctrl.Collection())
}

func TestDeleteCompany_CascadeRemovesProducts(t *testing.T) {
	backend := &fakeBackend{
		nextID: 10,
		companies: []models.Company{
			{ID: 4, Name: "Initech"},
			{ID: 5, Name: "Acme"},
		},
		products: []models.Product{
			{ID: 1, Name: "Widget", CompanyID: 5},
			{ID: 2, Name: "Gadget", CompanyID: 4},
			{ID: 3, Name: "Gizmo", CompanyID: 5},
		},
	}
	gw := newBackendGateway(t, backend)

	companies := Companies(testLogger(), gw)
	products := Products(testLogger(), gw)

	_, err := products.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products.Collection(), 3)

	require.NoError(t, companies.Delete(context.Background(), 5))

	// Компании 5 больше нет в зеркале
	for _, company := range companies.Collection() {
		assert.NotEqual(t, 5, company.ID)
	}

	// Следующий список продуктов не содержит продуктов компании 5
	fresh, err := products.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Product{{ID: 2, Name: "Gadget", CompanyID: 4}}, fresh)
}
