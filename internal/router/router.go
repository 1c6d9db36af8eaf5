package router

import (
	"net/http"

	"github.com/senyabanana/gig-service/internal/handlers"
)

func InitRoutes(requestHandler *handlers.RequestHandler, responseHandler *handlers.ResponseHandler, rateHandler *handlers.RateHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("/api/requests/new", requestHandler.CreateRequest)
	mux.HandleFunc("/api/requests/my", requestHandler.GetUserRequests)
	mux.HandleFunc("GET /api/requests/{requestId}", requestHandler.GetRequest)
	mux.HandleFunc("GET /api/requests/{requestId}/status", requestHandler.GetRequestStatus)
	mux.HandleFunc("PUT /api/requests/{requestId}/cancel", requestHandler.CancelRequest)
	mux.HandleFunc("PUT /api/requests/{requestId}/resend", requestHandler.ResendRequest)

	mux.HandleFunc("/api/requests/{requestId}/responses/new", responseHandler.SubmitResponse)
	mux.HandleFunc("GET /api/requests/{requestId}/responses", responseHandler.GetRequestResponses)
	mux.HandleFunc("PUT /api/requests/{requestId}/accept", responseHandler.AcceptResponse)

	mux.HandleFunc("/api/rates/advice", rateHandler.GetRateAdvice)

	return mux
}
