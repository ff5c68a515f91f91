package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/kazi/core/project"
	"github.com/trezcool/kazi/core/push"
	testutil "github.com/trezcool/kazi/tests"
)

func Test_projectApi_create(t *testing.T) {
	owner := testutil.CreateUser(t, usrRepo, "owner", "owner@test.cd", "LeP@ssword7", false, true)
	worker := testutil.CreateUser(t, usrRepo, "worker", "worker@test.cd", "LeP@ssword7", false, true)
	token := getToken(t, owner)

	deadline := time.Now().AddDate(0, 0, 10).UTC()
	newPrj := map[string]interface{}{
		"name":        "Launch",
		"description": "Ship the launch",
		"deadline":    deadline,
		"assignees":   []string{worker.Username},
	}

	tests := []httpTest{
		{name: "no token", body: marshallObj(t, newPrj), wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "empty body", token: token, wantCode: http.StatusBadRequest},
		{
			name:  "unknown assignee",
			token: token,
			body: marshallObj(t, map[string]interface{}{
				"name": "Nope", "description": "Nope", "deadline": deadline, "assignees": []string{"ghost"},
			}),
			wantCode: http.StatusBadRequest,
		},
		{name: "ok", token: token, body: marshallObj(t, newPrj), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/projects", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "ok" {
				var prj project.Project
				if err := json.Unmarshal(rec.Body.Bytes(), &prj); err != nil {
					t.Fatalf("unmarshalling Project: %v", err)
				}
				if !strings.HasPrefix(prj.ID, "D") || !strings.Contains(prj.ID, "KZ") {
					t.Errorf("unexpected project ID format: %q", prj.ID)
				}

				// assignee got notified
				var notified bool
				for _, msg := range mailSvc.Sent() {
					if len(msg.To) > 0 && msg.To[0].Address == worker.Email {
						notified = true
						break
					}
				}
				if !notified {
					t.Error("expected an assignment email to the assignee")
				}
			}
		})
	}
}

func Test_projectApi_detailAndListings(t *testing.T) {
	owner := testutil.CreateUser(t, usrRepo, "lister", "lister@test.cd", "LeP@ssword7", false, true)
	worker := testutil.CreateUser(t, usrRepo, "helper", "helper@test.cd", "LeP@ssword7", false, true)

	soon := time.Now().AddDate(0, 0, 2)
	later := time.Now().AddDate(0, 0, 9)
	prj1 := testutil.CreateProject(t, prjRepo, "D01SEP2026KZ9001", "Alpha", later, owner, worker)
	prj2 := testutil.CreateProject(t, prjRepo, "D01SEP2026KZ9002", "Beta", soon, owner, owner, worker)

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/projects/"+prj1.ID, getToken(t, owner))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v", rec.Code)
		}
		var detail project.Detail
		if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
			t.Fatalf("unmarshalling Detail: %v", err)
		}
		if detail.CreatedByUsername != owner.Username {
			t.Errorf("created_by = %q; want %q", detail.CreatedByUsername, owner.Username)
		}
		if len(detail.Assignees) != 1 || detail.Assignees[0] != worker.Username {
			t.Errorf("assignees = %v; want [%s]", detail.Assignees, worker.Username)
		}
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/projects/nope", getToken(t, owner))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want 404", rec.Code)
		}
	})

	t.Run("mine sorted by deadline", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/projects/mine", getToken(t, worker))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v", rec.Code)
		}
		var projects []project.Project
		if err := json.Unmarshal(rec.Body.Bytes(), &projects); err != nil {
			t.Fatalf("unmarshalling projects: %v", err)
		}
		if len(projects) != 2 {
			t.Fatalf("got %d projects; want 2", len(projects))
		}
		if projects[0].ID != prj2.ID { // soonest deadline first
			t.Errorf("first project = %s; want %s", projects[0].ID, prj2.ID)
		}
	})

	t.Run("by username", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/projects/user/"+worker.Username, getToken(t, owner))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v", rec.Code)
		}
		var projects []project.Project
		if err := json.Unmarshal(rec.Body.Bytes(), &projects); err != nil {
			t.Fatalf("unmarshalling projects: %v", err)
		}
		if len(projects) != 2 {
			t.Errorf("got %d projects; want 2", len(projects))
		}
	})

	t.Run("by unknown username", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/projects/user/ghost", getToken(t, owner))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want 404", rec.Code)
		}
	})
}

func Test_projectApi_updateAndDestroy(t *testing.T) {
	owner := testutil.CreateUser(t, usrRepo, "boss", "boss@test.cd", "LeP@ssword7", false, true)
	other := testutil.CreateUser(t, usrRepo, "other", "other@test.cd", "LeP@ssword7", false, true)
	prj := testutil.CreateProject(t, prjRepo, "D01SEP2026KZ9010", "Gamma", time.Now().AddDate(0, 0, 5), owner, other)

	update := map[string]interface{}{
		"name":        "Gamma v2",
		"description": "Updated",
		"deadline":    time.Now().AddDate(0, 0, 6).UTC(),
		"assignees":   []string{other.Username},
	}

	t.Run("update by non-owner forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/projects/"+prj.ID, getToken(t, other), marshallObj(t, update))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want 403", rec.Code)
		}
	})

	t.Run("update by owner", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/projects/"+prj.ID, getToken(t, owner), marshallObj(t, update))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want 200", rec.Code)
		}
	})

	t.Run("destroy by non-owner forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/projects/"+prj.ID, getToken(t, other))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want 403", rec.Code)
		}
	})

	t.Run("destroy by owner", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/projects/"+prj.ID, getToken(t, owner))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %v; want 204", rec.Code)
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/projects/"+prj.ID, getToken(t, owner))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code after delete = %v; want 404", rec.Code)
		}
	})
}

func Test_pushApi_subscribe(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "pusher", "pusher@test.cd", "LeP@ssword7", false, true)
	prj := testutil.CreateProject(t, prjRepo, "D01SEP2026KZ9020", "Delta", time.Now().AddDate(0, 0, 3), usr, usr)

	sub := push.NewSubscription{
		ProjectID: prj.ID,
		Endpoint:  "https://push.example.com/ep/123",
		Keys:      push.SubscriptionKeys{P256DH: "p256dh-key", Auth: "auth-key"},
	}

	tests := []httpTest{
		{name: "no token", body: marshallObj(t, sub), wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "missing keys", token: getToken(t, usr), body: marshallObj(t, map[string]string{"project_id": prj.ID}), wantCode: http.StatusBadRequest},
		{name: "ok", token: getToken(t, usr), body: marshallObj(t, sub), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/push/subscribe", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
