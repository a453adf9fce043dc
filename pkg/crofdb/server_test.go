package crofdb

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// fakeDB emulates the remote service: one map per location, guarded by token.
type fakeDB struct {
	mu     sync.Mutex
	token  string
	data   map[string]map[string]string
	writes int
}

func newFakeServer(t *testing.T, token string) (*httptest.Server, *fakeDB) {
	t.Helper()
	db := &fakeDB{token: token, data: make(map[string]map[string]string)}
	srv := httptest.NewServer(db.handler())
	t.Cleanup(srv.Close)
	return srv, db
}

func (f *fakeDB) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/getKey", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		loc, ok := f.authorize(w, q.Get("location"), q.Get("token"))
		if !ok {
			return
		}
		f.mu.Lock()
		v, found := loc[q.Get("keyname")]
		f.mu.Unlock()
		if !found {
			v = keyNotFound
		}
		writeJSON(w, map[string]string{"keycontent": v})
	})
	mux.HandleFunc("/getKeys", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		loc, ok := f.authorize(w, q.Get("location"), q.Get("token"))
		if !ok {
			return
		}
		n, err := strconv.Atoi(q.Get("keynamenum"))
		if err != nil {
			http.Error(w, "bad keynamenum", http.StatusBadRequest)
			return
		}
		out := make(map[string]string, n)
		f.mu.Lock()
		for i := 0; i < n; i++ {
			name := q.Get("key_" + strconv.Itoa(i))
			if v, found := loc[name]; found {
				out[name] = v
			} else {
				out[name] = keyNotFound
			}
		}
		f.mu.Unlock()
		writeJSON(w, out)
	})
	mux.HandleFunc("/getAll", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		loc, ok := f.authorize(w, q.Get("location"), q.Get("token"))
		if !ok {
			return
		}
		f.mu.Lock()
		out := make(map[string]string, len(loc))
		for k, v := range loc {
			out[k] = v
		}
		f.mu.Unlock()
		writeJSON(w, out)
	})
	mux.HandleFunc("/makeKey", func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeBody(w, r)
		if !ok {
			return
		}
		loc, ok := f.authorize(w, body["location"], body["token"])
		if !ok {
			return
		}
		f.mu.Lock()
		loc[body["keyname"]] = body["keycontent"]
		f.writes++
		f.mu.Unlock()
		_, _ = w.Write([]byte("success"))
	})
	mux.HandleFunc("/delKey", func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeBody(w, r)
		if !ok {
			return
		}
		loc, ok := f.authorize(w, body["location"], body["token"])
		if !ok {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, found := loc[body["keyname"]]; !found {
			_, _ = w.Write([]byte("key does not exist"))
			return
		}
		delete(loc, body["keyname"])
		f.writes++
		_, _ = w.Write([]byte("success"))
	})
	mux.HandleFunc("/resetDB", func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeBody(w, r)
		if !ok {
			return
		}
		if _, ok := f.authorize(w, body["location"], body["token"]); !ok {
			return
		}
		f.mu.Lock()
		f.data[body["location"]] = make(map[string]string)
		f.writes++
		f.mu.Unlock()
		_, _ = w.Write([]byte("success"))
	})
	return mux
}

func (f *fakeDB) authorize(w http.ResponseWriter, location, token string) (map[string]string, bool) {
	if token != f.token {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	loc, ok := f.data[location]
	if !ok {
		loc = make(map[string]string)
		f.data[location] = loc
	}
	return loc, true
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
