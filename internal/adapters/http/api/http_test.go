package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/huddle/internal/adapters/http/api"
	"github.com/okian/huddle/internal/adapters/repository"
	"github.com/okian/huddle/internal/domain/model"
	"github.com/okian/huddle/internal/domain/optimize"
	"github.com/okian/huddle/internal/domain/pairing"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

// stubDeps is a controllable Dependencies implementation for handler tests.
type stubDeps struct {
	set *position.Set

	players    map[string]*roster.Player
	seen       map[string]bool
	enqueued   []model.Judgment
	rejectNext bool

	pair         *pairing.Pair
	standings    []repository.Entry
	standingsErr error
	optimizeRes  *optimize.Result
	optimizeErr  error
}

func newStubDeps() *stubDeps {
	return &stubDeps{
		set:     position.Volleyball(),
		players: make(map[string]*roster.Player),
		seen:    make(map[string]bool),
	}
}

func (s *stubDeps) SeenAndRecord(ctx context.Context, id string) bool {
	if s.seen[id] {
		return true
	}
	s.seen[id] = true
	return false
}

func (s *stubDeps) Unrecord(ctx context.Context, id string) { delete(s.seen, id) }

func (s *stubDeps) Size() int64 { return int64(len(s.seen)) }

func (s *stubDeps) NormalizePosition(raw string) (position.Position, error) {
	return s.set.Normalize(raw)
}

func (s *stubDeps) RegisterPlayer(ctx context.Context, rec roster.Record) (*roster.Player, error) {
	p, err := roster.FromRecord(rec, s.set)
	if err != nil {
		return nil, err
	}
	if _, dup := s.players[p.ID]; dup {
		return nil, roster.ErrDuplicateID
	}
	s.players[p.ID] = p
	return p.Clone(), nil
}

func (s *stubDeps) ListPlayers(ctx context.Context) []*roster.Player {
	out := make([]*roster.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.Clone())
	}
	return out
}

func (s *stubDeps) RemovePlayer(ctx context.Context, id string) error {
	if _, ok := s.players[id]; !ok {
		return roster.ErrNotFound
	}
	delete(s.players, id)
	return nil
}

func (s *stubDeps) ResetPlayer(ctx context.Context, id string) error {
	if _, ok := s.players[id]; !ok {
		return roster.ErrNotFound
	}
	return nil
}

func (s *stubDeps) NextPair(ctx context.Context, pos position.Position) (*pairing.Pair, error) {
	return s.pair, nil
}

func (s *stubDeps) Enqueue(ctx context.Context, j model.Judgment) bool {
	if s.rejectNext {
		return false
	}
	s.enqueued = append(s.enqueued, j)
	return true
}

func (s *stubDeps) Standings(ctx context.Context, pos position.Position, n int) ([]repository.Entry, error) {
	if s.standingsErr != nil {
		return nil, s.standingsErr
	}
	if n > len(s.standings) {
		n = len(s.standings)
	}
	return s.standings[:n], nil
}

func (s *stubDeps) Optimize(ctx context.Context, comp position.Composition, teamCount int) (*optimize.Result, error) {
	return s.optimizeRes, s.optimizeErr
}

type stubStats struct{}

func (stubStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(deps *stubDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stubStats{}, 50).Register(context.Background(), mux)
	return mux
}

func doJSON(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestPlayersEndpoint(t *testing.T) {
	Convey("Given the players endpoint", t, func() {
		deps := newStubDeps()
		mux := newTestServer(deps)

		Convey("When a valid registration posts", func() {
			rec := doJSON(mux, http.MethodPost, "/players",
				`{"id":"p1","name":"Sam","positions":["s","oh"]}`)

			Convey("Then the player is created with normalized positions", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				var resp struct {
					ID        string   `json:"id"`
					Positions []string `json:"positions"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.ID, ShouldEqual, "p1")
				So(resp.Positions, ShouldResemble, []string{"S", "OH"})
			})

			Convey("And registering the same id again conflicts", func() {
				rec := doJSON(mux, http.MethodPost, "/players",
					`{"id":"p1","name":"Other","position":"MB"}`)
				So(rec.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the registration is malformed", func() {
			Convey("Invalid JSON is a 400", func() {
				rec := doJSON(mux, http.MethodPost, "/players", `{not json`)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("A missing id is a 400", func() {
				rec := doJSON(mux, http.MethodPost, "/players", `{"name":"Anon","position":"S"}`)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("An unknown position is a 400", func() {
				rec := doJSON(mux, http.MethodPost, "/players", `{"id":"p2","position":"GK"}`)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the roster is listed", func() {
			_ = doJSON(mux, http.MethodPost, "/players", `{"id":"p1","position":"S"}`)
			rec := doJSON(mux, http.MethodGet, "/players", "")

			Convey("Then all registered players come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp []map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp, ShouldHaveLength, 1)
			})
		})

		Convey("When a player is deleted", func() {
			_ = doJSON(mux, http.MethodPost, "/players", `{"id":"p1","position":"S"}`)

			So(doJSON(mux, http.MethodDelete, "/players/p1", "").Code, ShouldEqual, http.StatusOK)
			So(doJSON(mux, http.MethodDelete, "/players/p1", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a player is reset", func() {
			_ = doJSON(mux, http.MethodPost, "/players", `{"id":"p1","position":"S"}`)

			So(doJSON(mux, http.MethodPost, "/players/p1/reset", "").Code, ShouldEqual, http.StatusOK)
			So(doJSON(mux, http.MethodPost, "/players/ghost/reset", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPairEndpoint(t *testing.T) {
	Convey("Given the pair endpoint", t, func() {
		deps := newStubDeps()
		mux := newTestServer(deps)

		Convey("When a pair is available", func() {
			a, _ := roster.NewPlayer("a", "A", "S")
			b, _ := roster.NewPlayer("b", "B", "S")
			deps.pair = &pairing.Pair{A: a, B: b, Position: "S"}

			rec := doJSON(mux, http.MethodGet, "/pair?position=s", "")

			Convey("Then the pair ids come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Position  string `json:"position"`
					A, B      string
					Exhausted bool `json:"exhausted"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Position, ShouldEqual, "S")
				So(resp.A, ShouldEqual, "a")
				So(resp.B, ShouldEqual, "b")
				So(resp.Exhausted, ShouldBeFalse)
			})
		})

		Convey("When the position is exhausted", func() {
			rec := doJSON(mux, http.MethodGet, "/pair?position=S", "")

			Convey("Then exhaustion is a 200, not an error", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Exhausted bool `json:"exhausted"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Exhausted, ShouldBeTrue)
			})
		})

		Convey("When the position is unknown", func() {
			So(doJSON(mux, http.MethodGet, "/pair?position=GK", "").Code,
				ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestJudgmentsEndpoint(t *testing.T) {
	validBody := func(id string) string {
		return fmt.Sprintf(
			`{"judgment_id":%q,"winner_id":"a","loser_id":"b","position":"S","ts":%q}`,
			id, time.Now().Format(time.RFC3339))
	}

	Convey("Given the judgments endpoint", t, func() {
		deps := newStubDeps()
		mux := newTestServer(deps)

		Convey("When a valid judgment posts", func() {
			rec := doJSON(mux, http.MethodPost, "/judgments", validBody("j-1"))

			Convey("Then it is accepted for async processing", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].JudgmentID, ShouldEqual, "j-1")
				So(deps.enqueued[0].Position, ShouldEqual, position.Position("S"))
			})

			Convey("And a resubmission is acknowledged without re-enqueueing", func() {
				rec := doJSON(mux, http.MethodPost, "/judgments", validBody("j-1"))
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Duplicate bool `json:"duplicate"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Duplicate, ShouldBeTrue)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When the queue pushes back", func() {
			deps.rejectNext = true
			rec := doJSON(mux, http.MethodPost, "/judgments", validBody("j-2"))

			Convey("Then the client gets 429 and may retry the same id", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)

				deps.rejectNext = false
				rec := doJSON(mux, http.MethodPost, "/judgments", validBody("j-2"))
				So(rec.Code, ShouldEqual, http.StatusAccepted)
			})
		})

		Convey("When the judgment is malformed", func() {
			cases := map[string]string{
				"missing judgment_id": `{"winner_id":"a","loser_id":"b","position":"S","ts":"2026-08-23T10:00:00Z"}`,
				"same players":        `{"judgment_id":"x","winner_id":"a","loser_id":"a","position":"S","ts":"2026-08-23T10:00:00Z"}`,
				"bad timestamp":       `{"judgment_id":"x","winner_id":"a","loser_id":"b","position":"S","ts":"yesterday"}`,
				"unknown position":    `{"judgment_id":"x","winner_id":"a","loser_id":"b","position":"GK","ts":"2026-08-23T10:00:00Z"}`,
			}
			for name, body := range cases {
				Convey("Then "+name+" is rejected", func() {
					So(doJSON(mux, http.MethodPost, "/judgments", body).Code,
						ShouldEqual, http.StatusBadRequest)
				})
			}
		})
	})
}

func TestStandingsEndpoint(t *testing.T) {
	Convey("Given the standings endpoint", t, func() {
		deps := newStubDeps()
		deps.standings = []repository.Entry{
			{Rank: 1, PlayerID: "a", Score: 1530},
			{Rank: 2, PlayerID: "b", Score: 1470},
		}
		mux := newTestServer(deps)

		Convey("When the top entries are requested", func() {
			rec := doJSON(mux, http.MethodGet, "/standings?position=S&limit=10", "")

			Convey("Then ranked rows come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp []struct {
					Rank     int     `json:"rank"`
					PlayerID string  `json:"player_id"`
					Rating   float64 `json:"rating"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp, ShouldHaveLength, 2)
				So(resp[0].PlayerID, ShouldEqual, "a")
				So(resp[0].Rating, ShouldEqual, 1530)
			})
		})

		Convey("When the limit is invalid", func() {
			So(doJSON(mux, http.MethodGet, "/standings?position=S", "").Code,
				ShouldEqual, http.StatusBadRequest)
			So(doJSON(mux, http.MethodGet, "/standings?position=S&limit=0", "").Code,
				ShouldEqual, http.StatusBadRequest)
			So(doJSON(mux, http.MethodGet, "/standings?position=S&limit=999", "").Code,
				ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the position is unknown", func() {
			So(doJSON(mux, http.MethodGet, "/standings?position=GK&limit=5", "").Code,
				ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestOptimizeEndpoint(t *testing.T) {
	Convey("Given the optimize endpoint", t, func() {
		deps := newStubDeps()
		mux := newTestServer(deps)
		body := `{"composition":{"S":1,"OH":2},"team_count":2}`

		Convey("When the optimization succeeds", func() {
			deps.optimizeRes = &optimize.Result{
				Teams: []optimize.TeamResult{{Strength: 4500}, {Strength: 4480}},
			}
			rec := doJSON(mux, http.MethodPost, "/optimize", body)

			Convey("Then the result is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Teams []struct {
						Strength float64 `json:"strength"`
					} `json:"teams"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Teams, ShouldHaveLength, 2)
			})
		})

		Convey("When the roster cannot cover the composition", func() {
			deps.optimizeErr = &optimize.CompositionError{Shortages: []optimize.Shortage{
				{Position: "S", Display: "Setter", Required: 2, Available: 1, Missing: 1},
			}}
			rec := doJSON(mux, http.MethodPost, "/optimize", body)

			Convey("Then the shortage detail comes back as 422", func() {
				So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
				var resp struct {
					Code      string              `json:"code"`
					Shortages []optimize.Shortage `json:"shortages"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "composition_exceeds_roster")
				So(resp.Shortages, ShouldHaveLength, 1)
				So(resp.Shortages[0].Missing, ShouldEqual, 1)
			})
		})

		Convey("When the request itself is invalid", func() {
			deps.optimizeErr = optimize.ErrTeamCount
			So(doJSON(mux, http.MethodPost, "/optimize",
				`{"composition":{"S":1},"team_count":1}`).Code,
				ShouldEqual, http.StatusBadRequest)

			So(doJSON(mux, http.MethodPost, "/optimize", `{"team_count":2}`).Code,
				ShouldEqual, http.StatusBadRequest)

			So(doJSON(mux, http.MethodPost, "/optimize",
				`{"composition":{"GK":1},"team_count":2}`).Code,
				ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStatsAndHealthEndpoints(t *testing.T) {
	Convey("Given the observability endpoints", t, func() {
		mux := newTestServer(newStubDeps())

		Convey("When stats are requested", func() {
			rec := doJSON(mux, http.MethodGet, "/stats", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			var resp map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp["started"], ShouldEqual, true)
		})

		Convey("When the health endpoint is scraped", func() {
			rec := doJSON(mux, http.MethodGet, "/healthz", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "huddle_teams")
		})
	})
}
