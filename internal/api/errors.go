package api

import (
	"log"
	"net/http"
)

func BadRequest(w http.ResponseWriter, message string) {
	http.Error(w, message, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter) {
	http.Error(w, "Not Found", http.StatusNotFound)
}

func MethodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// ServerError logs err and answers with a generic 500
func ServerError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// Failure logs a backend failure once and returns the line shown to the user
func Failure(r *http.Request, op string, err error, message string) string {
	log.Printf("%s %s: %s: %v", r.Method, r.URL.Path, op, err)
	return message
}
