// Command socialgraph is a standalone mock of the social graph service for
// local development. It serves a fixed friendship map and returns 404 for
// unknown users, matching the real collaborator's contract.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var friends = map[int64][]int64{
	1: {2, 3, 4},
	2: {1, 3},
	3: {1, 2, 5},
	4: {1},
	5: {3},
}

type friendsResponse struct {
	UserID    int64   `json:"user_id"`
	FriendIDs []int64 `json:"friend_ids"`
}

func main() {
	http.HandleFunc("/api/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		// api/v1/users/{id}/friends
		if len(parts) != 5 || parts[4] != "friends" {
			http.NotFound(w, r)

			return
		}

		id, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)

			return
		}

		ids, ok := friends[id]
		if !ok {
			http.NotFound(w, r)
			log.Printf("[SocialGraph] %s %s - 404", r.Method, r.URL.Path)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(friendsResponse{UserID: id, FriendIDs: ids}); err != nil {
			log.Printf("[SocialGraph] Write error: %v", err)
		}

		log.Printf("[SocialGraph] %s %s - 200 OK", r.Method, r.URL.Path)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
			log.Printf("[SocialGraph] Health write error: %v", err)
		}
	})

	log.Println("Mock social graph running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
