package petapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inovacc/vetlink/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, Options{Timeout: 5 * time.Second})
	require.NoError(t, err)

	return c
}

func TestNew_ValidatesURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:8000", false},
		{"https with prefix", "https://clinic.example.com/v1/", false},
		{"no scheme", "localhost:8000", true},
		{"ftp", "ftp://clinic.example.com", true},
		{"no host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.url, Options{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_List(t *testing.T) {
	var got *http.Request

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"count": 31,
			"next": "http://localhost:8000/api/consult-mascotas/?page=3",
			"previous": null,
			"results": [
				{"id": 1, "nombre": "Luna", "especie": "Perro", "raza": "Beagle", "sexo": "H",
				 "fecha_nacimiento": "2020-01-01", "usuario_cliente": "mario"},
				{"id": 2, "nombre": "Milo", "especie": "Gato", "raza": "Siames", "sexo": "M",
				 "fecha_nacimiento": "2019-03-12", "usuario_cliente": 7}
			]
		}`)
	}))

	q := model.Query{Search: "lu", Column: model.ColumnAge, Order: model.Descending, Page: 1, PageSize: 25}

	result, err := c.List(context.Background(), q)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, PetsPath, got.URL.Path)
	assert.Equal(t, "search=lu&column=fecha_nacimiento&order=desc&page=2&page_size=25", got.URL.RawQuery)
	assert.NotEmpty(t, got.Header.Get(RequestIDHeader))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))

	assert.Equal(t, 31, result.Count)
	require.Len(t, result.Pets, 2)
	assert.Equal(t, "Luna", result.Pets[0].Name)
	assert.Equal(t, model.OwnerRef("7"), result.Pets[1].Owner)
}

func TestClient_List_PathPrefix(t *testing.T) {
	var path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = io.WriteString(w, `{"count": 0, "results": []}`)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/clinic/", Options{})
	require.NoError(t, err)

	_, err = c.List(context.Background(), model.DefaultQuery())
	require.NoError(t, err)
	assert.Equal(t, "/clinic/api/consult-mascotas/", path)
}

func TestClient_List_EmptyResults(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"count": 0, "next": null, "previous": null, "results": []}`)
	}))

	result, err := c.List(context.Background(), model.DefaultQuery())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Pets)
}

func TestClient_List_RejectsInvalidQuery(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	q := model.DefaultQuery()
	q.Column = "fecha_nacimiento"

	_, err := c.List(context.Background(), q)
	assert.ErrorIs(t, err, model.ErrUnknownColumn)
	assert.False(t, called, "no request should be sent for an invalid query")
}

func TestClient_List_ErrorTaxonomy(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error": "database is locked"}`)
		}))

		_, err := c.List(context.Background(), model.DefaultQuery())

		var serr *StatusError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
		assert.Equal(t, "database is locked", serr.Detail())
		assert.True(t, IsRetryable(err))
		assert.Equal(t, "status", Kind(err))
	})

	t.Run("invalid page", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail": "Invalid page."}`)
		}))

		_, err := c.List(context.Background(), model.DefaultQuery())

		var serr *StatusError
		require.ErrorAs(t, err, &serr)
		assert.True(t, serr.NotFound())
		assert.EqualError(t, err, "list pets: API error (status 404): Invalid page.")
		assert.False(t, IsRetryable(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `<html>gateway</html>`)
		}))

		_, err := c.List(context.Background(), model.DefaultQuery())

		var derr *DecodeError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "decode", Kind(err))
		assert.False(t, IsRetryable(err))
	})

	t.Run("missing results", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"count": 3}`)
		}))

		_, err := c.List(context.Background(), model.DefaultQuery())

		var derr *DecodeError
		assert.ErrorAs(t, err, &derr)
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(url, Options{Timeout: time.Second})
		require.NoError(t, err)

		_, err = c.List(context.Background(), model.DefaultQuery())

		var terr *TransportError
		require.ErrorAs(t, err, &terr)
		assert.True(t, IsRetryable(err))
		assert.Equal(t, "network", Kind(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"count": 0, "results": []}`)
		}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.List(ctx, model.DefaultQuery())
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestClient_Create(t *testing.T) {
	var payload map[string]string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, CreatePetPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 12, "nombre": "Kira", "especie": "Perro", "raza": "Mestizo",
			"sexo": "H", "fecha_nacimiento": "2022-02-02", "usuario_cliente": "ana"}`)
	}))

	pet, err := c.Create(context.Background(), model.NewPet{
		Name: " Kira ", Species: "Perro", Breed: "Mestizo", Sex: "H", BirthDate: "2022-02-02", Owner: "ana",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(12), pet.ID)
	assert.Equal(t, "Kira", payload["nombre"], "payload should be trimmed")
	assert.Equal(t, "ana", payload["usuario_cliente"])
}

func TestClient_CreateOwner(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		var payload model.Owner

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, AddClientPath, r.URL.Path)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(payload)
		}))

		owner, err := c.CreateOwner(context.Background(), model.Owner{Username: " agomez", IDNumber: "1045678901", Name: "Ana Gómez"})
		require.NoError(t, err)

		assert.Equal(t, "agomez", payload.Username)
		assert.Equal(t, "Ana Gómez", owner.Name)
	})

	t.Run("username taken", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"usuario": ["A client with that username already exists."]}`)
		}))

		_, err := c.CreateOwner(context.Background(), model.Owner{Username: "ana"})

		var serr *StatusError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, map[string][]string{"usuario": {"A client with that username already exists."}}, serr.FieldErrors())
		assert.False(t, IsRetryable(err))
	})
}

func TestClient_Create_Errors(t *testing.T) {
	t.Run("unknown owner", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error": "Usuario no encontrado."}`)
		}))

		_, err := c.Create(context.Background(), model.NewPet{Owner: "ghost"})

		var serr *StatusError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "Usuario no encontrado.", serr.Detail())
	})

	t.Run("field errors", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"sexo": ["This field is required."], "nombre": ["Too long."]}`)
		}))

		_, err := c.Create(context.Background(), model.NewPet{})

		var serr *StatusError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, map[string][]string{
			"sexo":   {"This field is required."},
			"nombre": {"Too long."},
		}, serr.FieldErrors())
		assert.Equal(t, "nombre: Too long.; sexo: This field is required.", serr.Detail())
	})
}

func TestClient_ListOwners(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, OwnersPath, r.URL.Path)
		assert.Equal(t, "search=ana&column=nombre&order=asc&page=1&page_size=10", r.URL.RawQuery)
		_, _ = io.WriteString(w, `{"count": 1, "next": null, "previous": null, "results": [
			{"usuario": "ana", "cedula": "123", "nombre": "Ana Ruiz", "telefono": "555", "correo": "ana@example.com"}
		]}`)
	}))

	q := model.DefaultOwnerQuery()
	q.Search = "ana"
	q.Column = "nombre"

	page, err := c.ListOwners(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, "Ana Ruiz", page.Owners[0].Name)
}

func TestStatusError_DetailFallsBackToBody(t *testing.T) {
	err := &StatusError{Operation: "list pets", StatusCode: http.StatusBadGateway, Body: "upstream timeout"}
	assert.Equal(t, "upstream timeout", err.Detail())
	assert.Equal(t, "list pets: API error (status 502): upstream timeout", err.Error())

	empty := &StatusError{Operation: "list pets", StatusCode: http.StatusServiceUnavailable}
	assert.Equal(t, "list pets: API error (status 503)", empty.Error())
}

func TestIsRetryable_PlainErrors(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(nil))
	assert.Equal(t, "other", Kind(errors.New("boom")))
	assert.Equal(t, "", Kind(nil))
}
