//go:build e2e

package booking_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"treatment-booking/internal/handler/dto/response"
	"treatment-booking/internal/usecase/shared"
	"treatment-booking/tests/common/authtest"
	"treatment-booking/tests/common/builder"
	"treatment-booking/tests/common/dbtest"
	"treatment-booking/tests/common/httptest"
	"treatment-booking/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	bookingsURL = "/api/bookings"
	bookingURL  = "/api/bookings/%s"
)

type BookingSuite struct {
	e2e.SharedSuite
	token string
}

func (s *BookingSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.token = authtest.NewJWTHelper(s.Config.JWT).GenerateToken(s.T(), "front-desk")
}

func (s *BookingSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

func (s *BookingSuite) create(t *testing.T, b *builder.BookingBuilder, token string) response.BookingResponse {
	t.Helper()
	rec := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL, b.BuildCreateRequestDTO(), token)
	var res response.BookingResponse
	httptest.AssertSuccessResponse(t, rec, http.StatusCreated, &res)
	return res
}

// =============================================================================
// TestCreateBooking
// =============================================================================

func (s *BookingSuite) TestCreateBooking() {
	s.Run("Normal case: snapshot and totals are frozen at creation", func() {
		t := s.T()

		massage := builder.MassageProgram()
		created := s.create(t, builder.NewBookingBuilder().WithProgram(&massage, 90, 2), s.token)

		require.Equal(t, "pending", created.Status)
		require.NotNil(t, created.CreatedBy)
		require.Equal(t, "front-desk", *created.CreatedBy)
		require.Equal(t, int64(1), created.Version)

		want := response.TotalsResponse{Subtotal: 2600, GrandTotal: 2600, Currency: "EUR"}
		if diff := cmp.Diff(want, created.Totals); diff != "" {
			t.Errorf("totals mismatch (-want +got):\n%s", diff)
		}

		// later catalog price changes never reach existing bookings
		_, err := s.DB.Exec(t.Context(), `UPDATE programs SET doc = jsonb_set(doc, '{options,1,price}', '9999') WHERE id = $1`, massage.ID)
		require.NoError(t, err)

		rec := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(bookingURL, created.ID), nil, s.token)
		var got response.BookingResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &got)
		if diff := cmp.Diff(created, got, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
			t.Errorf("booking changed after catalog update (-want +got):\n%s", diff)
		}

		events := dbtest.CountOutboxEvents(t, s.DB, created.ID)
		require.Equal(t, map[string]int{string(shared.EventBookingCreated): 1}, events)
	})

	s.Run("Normal case: anonymous creation leaves createdBy empty", func() {
		t := s.T()
		created := s.create(t, builder.NewBookingBuilder(), "")
		require.Nil(t, created.CreatedBy)
	})

	s.Run("Normal case: request id is echoed or generated", func() {
		t := s.T()
		body := builder.NewBookingBuilder().BuildCreateRequestDTO()

		rec := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, bookingsURL, body, s.token,
			map[string]string{httptest.HeaderRequestID: "front-desk-req-1"})
		httptest.AssertSuccessResponse(t, rec, http.StatusCreated, nil)
		httptest.AssertRequestID(t, rec, "front-desk-req-1")

		rec = httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL, body, s.token)
		httptest.AssertSuccessResponse(t, rec, http.StatusCreated, nil)
		httptest.AssertRequestID(t, rec, "")
	})

	s.Run("Error case: unknown program is 422", func() {
		t := s.T()
		ghost := builder.MassageProgram()
		ghost.ID = uuid.New()

		rec := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			builder.NewBookingBuilder().WithProgram(&ghost, 60, 1).BuildCreateRequestDTO(), "")
		httptest.AssertErrorCode(t, rec, http.StatusUnprocessableEntity, "catalog_item_not_found")
	})

	s.Run("Error case: duration not offered is 422", func() {
		t := s.T()
		massage := builder.MassageProgram()

		rec := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL,
			builder.NewBookingBuilder().WithProgram(&massage, 75, 1).BuildCreateRequestDTO(), "")
		httptest.AssertErrorCode(t, rec, http.StatusUnprocessableEntity, "duration_option_not_found")
	})
}

// =============================================================================
// TestLifecycle
// =============================================================================

func (s *BookingSuite) TestLifecycle() {
	s.Run("Normal case: update, confirm, cancel", func() {
		t := s.T()
		created := s.create(t, builder.NewBookingBuilder(), s.token)
		path := fmt.Sprintf(bookingURL, created.ID)

		rec := httptest.PerformRequest(t, s.Router, http.MethodPatch, path, map[string]any{"note": "Allergic to nuts"}, s.token)
		var updated response.BookingResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &updated)
		require.Equal(t, "Allergic to nuts", updated.Note)
		require.Equal(t, created.Version+1, updated.Version)

		rec = httptest.PerformRequest(t, s.Router, http.MethodPost, path+"/confirm", nil, s.token)
		var confirmed response.BookingResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &confirmed)
		require.Equal(t, "confirmed", confirmed.Status)

		// same-state transition is accepted and changes nothing
		rec = httptest.PerformRequest(t, s.Router, http.MethodPost, path+"/confirm", nil, s.token)
		var again response.BookingResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &again)
		require.Equal(t, confirmed.Version, again.Version)

		rec = httptest.PerformRequest(t, s.Router, http.MethodPost, path+"/cancel", nil, s.token)
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)

		rec = httptest.PerformRequest(t, s.Router, http.MethodPatch, path, map[string]any{"note": "too late"}, s.token)
		httptest.AssertErrorCode(t, rec, http.StatusConflict, "booking_canceled")

		rec = httptest.PerformRequest(t, s.Router, http.MethodPost, path+"/confirm", nil, s.token)
		httptest.AssertErrorCode(t, rec, http.StatusConflict, "invalid_transition")

		events := dbtest.CountOutboxEvents(t, s.DB, created.ID)
		want := map[string]int{
			string(shared.EventBookingCreated):   1,
			string(shared.EventBookingUpdated):   1,
			string(shared.EventBookingConfirmed): 1,
			string(shared.EventBookingCanceled):  1,
		}
		if diff := cmp.Diff(want, events); diff != "" {
			t.Errorf("outbox mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("Error case: unknown booking is 404", func() {
		t := s.T()
		rec := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(bookingURL, uuid.New())+"/cancel", nil, s.token)
		httptest.AssertErrorCode(t, rec, http.StatusNotFound, "booking_not_found")
	})

	s.Run("Error case: listing requires identity", func() {
		t := s.T()
		rec := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL, nil, "")
		httptest.AssertErrorCode(t, rec, http.StatusUnauthorized, "unauthorized")
	})
}

// =============================================================================
// TestListBookings
// =============================================================================

func (s *BookingSuite) TestListBookings() {
	s.Run("Normal case: pages cover every booking exactly once", func() {
		t := s.T()

		var want []uuid.UUID
		for _, name := range []string{"Alice Martin", "bob Stone", "Alicia Keys", "Zoé Petit", "alistair Grey"} {
			want = append(want, s.create(t, builder.NewBookingBuilder().WithContactName(name), s.token).ID)
		}

		var got []uuid.UUID
		token := ""
		for pages := 0; pages < 10; pages++ {
			q := url.Values{"pageSize": {"2"}, "direction": {"asc"}}
			if token != "" {
				q.Set("pageToken", token)
			}
			rec := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?"+q.Encode(), nil, s.token)
			var page response.BookingListResponse
			httptest.AssertSuccessResponse(t, rec, http.StatusOK, &page)
			for _, it := range page.Items {
				got = append(got, it.ID)
			}
			if !page.HasMore {
				require.Empty(t, page.NextPageToken)
				break
			}
			token = page.NextPageToken
		}

		// creations inside one millisecond fall back to id order
		byID := cmpopts.SortSlices(func(a, b uuid.UUID) bool { return a.String() < b.String() })
		if diff := cmp.Diff(want, got, byID); diff != "" {
			t.Errorf("pagination mismatch (-want +got):\n%s", diff)
		}
		require.Len(t, got, len(want))
	})

	s.Run("Normal case: case-insensitive name prefix ordered by name", func() {
		t := s.T()
		for _, name := range []string{"Alice Martin", "bob Stone", "Alicia Keys", "alistair Grey"} {
			s.create(t, builder.NewBookingBuilder().WithContactName(name), s.token)
		}

		q := url.Values{"q": {"ALI"}, "from": {"2000-01-01T00:00:00Z"}, "direction": {"asc"}}
		rec := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?"+q.Encode(), nil, s.token)
		var page response.BookingListResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &page)

		var names []string
		for _, it := range page.Items {
			names = append(names, it.Contact.Name)
		}
		if diff := cmp.Diff([]string{"Alice Martin", "Alicia Keys", "alistair Grey"}, names); diff != "" {
			t.Errorf("prefix mismatch (-want +got):\n%s", diff)
		}
		require.Equal(t, "textPrefix", page.Meta.AppliedRange)
		require.NotEmpty(t, page.Meta.Notices)
	})

	s.Run("Normal case: status filter", func() {
		t := s.T()
		a := s.create(t, builder.NewBookingBuilder(), s.token)
		s.create(t, builder.NewBookingBuilder(), s.token)
		rec := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(bookingURL, a.ID)+"/confirm", nil, s.token)
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)

		rec = httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?status=confirmed", nil, s.token)
		var page response.BookingListResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &page)
		require.Len(t, page.Items, 1)
		require.Equal(t, a.ID, page.Items[0].ID)
	})

	s.Run("Error case: token reused with another sort is rejected", func() {
		t := s.T()
		for range 3 {
			s.create(t, builder.NewBookingBuilder(), s.token)
		}
		rec := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?pageSize=1", nil, s.token)
		var page response.BookingListResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &page)
		require.True(t, page.HasMore)

		q := url.Values{"pageSize": {"1"}, "q": {"ali"}, "pageToken": {page.NextPageToken}}
		rec = httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?"+q.Encode(), nil, s.token)
		httptest.AssertErrorCode(t, rec, http.StatusBadRequest, "page_token_mismatch")
	})
}
