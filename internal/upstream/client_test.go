package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/api"})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestBearerHeaderAndPath(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		io.WriteString(w, `{"success":true,"data":{"id":9,"usuario_id":2,"estado":"pendiente","servicios":[{"id":1},{"id":2}]}}`)
	})
	res, err := c.GetCart(context.Background(), "tok-123")
	if err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotPath != "/api/reservas/carrito" {
		t.Fatalf("path = %q", gotPath)
	}
	if res == nil || len(res.Bookings) != 2 || res.Status != model.StatusPending {
		t.Fatalf("unexpected cart %+v", res)
	}
}

func TestGetCartEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":null}`)
	})
	res, err := c.GetCart(context.Background(), "t")
	if err != nil || res != nil {
		t.Fatalf("expected nil cart, got %+v %v", res, err)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusConflict, `{"success":false,"message":"Horario no disponible"}`, "Horario no disponible"},
		{"validation errors", http.StatusUnprocessableEntity, `{"errors":{"hora_fin":["La hora de fin es inválida"]}}`, "La hora de fin es inválida"},
		{"unauthorized fallback", http.StatusUnauthorized, ``, msgUnauthorized},
		{"generic fallback", http.StatusInternalServerError, `<html>`, msgFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})
			err := c.ClearCart(context.Background(), "t")
			ae, ok := err.(*APIError)
			if !ok {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if ae.Status != tc.status || ae.Message != tc.message {
				t.Fatalf("got %+v", ae)
			}
			if IsUnauthorized(err) != (tc.status == http.StatusUnauthorized) {
				t.Fatalf("IsUnauthorized mismatch")
			}
		})
	}
}

func TestSuccessFalseIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"message":"No se pudo confirmar"}`)
	})
	_, err := c.ConfirmCart(context.Background(), "t", "")
	if err == nil || err.Error() != "No se pudo confirmar" {
		t.Fatalf("got %v", err)
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c, err := New(Options{BaseURL: url})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.GetCart(context.Background(), "t")
	if StatusOf(err) != 0 || err.Error() != msgUnreachable {
		t.Fatalf("got %v", err)
	}
}

func TestAddToCartBody(t *testing.T) {
	var got model.AddItemRequest
	var method string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"success":true,"data":{}}`)
	})
	item := model.AddItemRequest{ServiceID: 42, EnterpriseID: 3, StartDate: "2025-06-01", StartTime: "09:00", EndTime: "11:00", DurationMinutes: 120, Quantity: 1}
	if err := c.AddToCart(context.Background(), "t", item); err != nil {
		t.Fatal(err)
	}
	if method != http.MethodPost || got != item {
		t.Fatalf("got %s %+v", method, got)
	}
}

func TestListingAcceptsPageAndArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/categorias") {
			io.WriteString(w, `{"success":true,"data":[{"id":1,"nombre":"Aventura"},{"id":2,"nombre":"Gastronomía"}]}`)
			return
		}
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("page query = %q", r.URL.RawQuery)
		}
		io.WriteString(w, `{"success":true,"data":{"current_page":2,"data":[{"id":5,"nombre":"Kayak","precio_referencial":"45.00"}],"per_page":10,"total":11,"last_page":2,"next_page_url":null,"prev_page_url":"x"}}`)
	})
	cats, err := c.ListCategories(context.Background(), "", PageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cats.Data) != 2 || cats.Total != 2 || cats.LastPage != 1 {
		t.Fatalf("categories = %+v", cats)
	}
	svc, err := c.ListServices(context.Background(), "", PageOptions{Page: 2})
	if err != nil {
		t.Fatal(err)
	}
	if svc.CurrentPage != 2 || svc.Total != 11 || len(svc.Data) != 1 || svc.Data[0].Price != 45 || svc.HasNext() {
		t.Fatalf("services = %+v", svc)
	}
}

func TestGetServiceUnwrapsArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":[{"id":7,"nombre":"Tour"}]}`)
	})
	s, err := c.GetService(context.Background(), "", 7)
	if err != nil || s.ID != 7 {
		t.Fatalf("got %+v %v", s, err)
	}
}

func TestCheckAvailabilityQuery(t *testing.T) {
	var q map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q = map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		io.WriteString(w, `{"success":true,"disponible":true}`)
	})
	excl := uint64(4)
	ok, err := c.CheckAvailability(context.Background(), "t", model.AvailabilityQuery{
		ServiceID: 42, StartDate: "2025-06-01", StartTime: "09:00", EndTime: "11:00", ExcludeBookingID: &excl,
	})
	if err != nil || !ok {
		t.Fatalf("got %v %v", ok, err)
	}
	want := map[string]string{"servicio_id": "42", "fecha_inicio": "2025-06-01", "hora_inicio": "09:00", "hora_fin": "11:00", "reserva_servicio_id": "4"}
	for k, v := range want {
		if q[k] != v {
			t.Fatalf("%s = %q, want %q", k, q[k], v)
		}
	}
	if _, has := q["fecha_fin"]; has {
		t.Fatal("fecha_fin should be omitted")
	}
}

func TestLoginTokenField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a bearer token")
		}
		io.WriteString(w, `{"success":true,"data":{"token":"abc","user":{"id":3,"email":"a@b.pe"}}}`)
	})
	res, err := c.Login(context.Background(), "a@b.pe", "secret")
	if err != nil || res.Bearer() != "abc" || res.User.ID != 3 {
		t.Fatalf("got %+v %v", res, err)
	}
}
