// Package apitest runs an in-process fake of the Lair media API for tests.
package apitest

import (
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"lair-scanner/core/api"
	"lair-scanner/core/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Token is the bearer token accepted by the fake server.
const Token = "test-token"

// Call is a request received by the fake server.
type Call struct {
	Method string
	Route  string
	Path   string
}

// Server is a fake Lair API listening on a random local port.
type Server struct {
	// URL is the base URL to configure the client with.
	URL string

	app *fiber.App

	mu       sync.Mutex
	scanners map[string]*models.Scanner
	sources  []*models.Source
	files    map[string][]models.File
	settings models.Settings
	scans    map[string]*models.Scan
	changes  map[string][]models.Payload
	calls    []Call
	failures map[string][]int
}

// New starts a fake server that is shut down when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		scanners: make(map[string]*models.Scanner),
		files:    make(map[string][]models.File),
		scans:    make(map[string]*models.Scan),
		changes:  make(map[string][]models.Payload),
		failures: make(map[string][]int),
		settings: models.Settings{Ignores: []string{}},
	}

	s.app = fiber.New(fiber.Config{DisableStartupMessage: true, Immutable: true})
	s.routes()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	s.URL = "http://" + ln.Addr().String()

	go func() { _ = s.app.Listener(ln) }()
	t.Cleanup(func() { _ = s.app.Shutdown() })

	return s
}

// Config returns a client configuration targeting the server.
func (s *Server) Config() api.Config {
	return api.Config{URL: s.URL, Token: Token, TimeoutSeconds: 5}
}

// Client returns a client configured for the server.
func (s *Server) Client(t testing.TB) *api.Client {
	t.Helper()
	c, err := api.NewClient(s.Config())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func (s *Server) routes() {
	r := s.app.Group("/api", s.authenticate)

	r.Post("/media/scanners", s.handle(s.createScanner))
	r.Get("/media/scanners/:id", s.handle(s.retrieveScanner))
	r.Patch("/media/scanners/:id", s.handle(s.updateScanner))

	r.Get("/media/sources", s.handle(s.findSources))
	r.Post("/media/sources", s.handle(s.createSource))
	r.Patch("/media/sources/:id", s.handle(s.updateSource))
	r.Post("/media/sources/:id/scanPaths", s.handle(s.createScanPath))
	r.Delete("/media/sources/:id/scanPaths/:scanPathId", s.handle(s.deleteScanPath))

	// Get also answers HEAD requests, used to count files
	r.Get("/media/files", s.handle(s.findFiles))

	r.Post("/media/scans", s.handle(s.createScan))
	r.Post("/media/scans/:id/changes", s.handle(s.addChanges))
	r.Patch("/media/scans/:id", s.handle(s.updateScan))

	r.Get("/media/settings", s.handle(s.getSettings))
	r.Patch("/media/settings", s.handle(s.updateSettings))
}

func (s *Server) authenticate(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) != "Bearer "+Token {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid token"})
	}
	return c.Next()
}

// handle records the call and applies injected failures.
func (s *Server) handle(h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		route := c.Route().Path
		method := c.Method()

		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: method, Route: route, Path: c.Path()})
		key := failureKey(method, route)
		var status int
		if queue := s.failures[key]; len(queue) > 0 {
			status = queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			return c.Status(status).JSON(fiber.Map{"message": "injected failure"})
		}
		return h(c)
	}
}

func failureKey(method, route string) string {
	return method + " " + strings.TrimPrefix(route, "/api")
}

// Fail makes the next request to route answer with status.
// The route uses the fiber syntax without the /api prefix, e.g. "/media/scans/:id/changes".
func (s *Server) Fail(method, route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := failureKey(method, route)
	s.failures[key] = append(s.failures[key], status)
}

// Calls returns the number of requests received for a method and route.
func (s *Server) Calls(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.calls {
		if c.Method == method && strings.TrimPrefix(c.Route, "/api") == route {
			n++
		}
	}
	return n
}

// MutatingCalls returns the number of non-GET/HEAD requests received.
func (s *Server) MutatingCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.calls {
		if c.Method != fiber.MethodGet && c.Method != fiber.MethodHead {
			n++
		}
	}
	return n
}

// AddSource registers a source with the given scan paths.
func (s *Server) AddSource(name string, scanPaths ...string) *models.Source {
	s.mu.Lock()
	defer s.mu.Unlock()

	source := &models.Source{ID: uuid.NewString(), Name: name}
	for _, p := range scanPaths {
		source.ScanPaths = append(source.ScanPaths, models.ScanPath{ID: uuid.NewString(), Path: p, Category: "movies"})
	}
	s.sources = append(s.sources, source)

	copied := *source
	return &copied
}

// SetSourceIgnores replaces the source-level ignore patterns.
func (s *Server) SetSourceIgnores(sourceID string, patterns ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src := s.source(sourceID); src != nil {
		src.Properties.Ignores = patterns
	}
}

// AddScanner registers a scanner mapping source IDs to local paths.
func (s *Server) AddScanner(sourcePaths map[string]string) *models.Scanner {
	s.mu.Lock()
	defer s.mu.Unlock()

	scanner := &models.Scanner{ID: uuid.NewString(), Properties: models.ScannerProperties{SourcePaths: sourcePaths}}
	s.scanners[scanner.ID] = scanner
	copied := *scanner
	return &copied
}

// Scanner returns a registered scanner.
func (s *Server) Scanner(id string) *models.Scanner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.scanners[id]; ok {
		copied := *sc
		return &copied
	}
	return nil
}

// AddFiles adds remote files to a source.
func (s *Server) AddFiles(sourceID string, files ...models.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[sourceID] = append(s.files[sourceID], files...)
}

// SetIgnores replaces the global ignore patterns.
func (s *Server) SetIgnores(patterns ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Ignores = patterns
}

// Ignores returns the global ignore patterns.
func (s *Server) Ignores() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.settings.Ignores...)
}

// Source returns a copy of a registered source by name.
func (s *Server) Source(name string) *models.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, src := range s.sources {
		if src.Name == name {
			copied := *src
			copied.ScanPaths = append([]models.ScanPath(nil), src.ScanPaths...)
			return &copied
		}
	}
	return nil
}

// Scans returns all created scans.
func (s *Server) Scans() []models.Scan {
	s.mu.Lock()
	defer s.mu.Unlock()

	scans := make([]models.Scan, 0, len(s.scans))
	for _, scan := range s.scans {
		scans = append(scans, *scan)
	}
	sort.Slice(scans, func(i, j int) bool { return scans[i].ID < scans[j].ID })
	return scans
}

// Changes returns the changes uploaded to a scan, ordered by path.
func (s *Server) Changes(scanID string) []models.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes := append([]models.Payload(nil), s.changes[scanID]...)
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

// source must be called with the lock held.
func (s *Server) source(id string) *models.Source {
	for _, src := range s.sources {
		if src.ID == id {
			return src
		}
	}
	return nil
}

func setPagination(c *fiber.Ctx, start, number, total, filtered int) {
	c.Set(api.HeaderStart, strconv.Itoa(start))
	c.Set(api.HeaderNumber, strconv.Itoa(number))
	c.Set(api.HeaderTotal, strconv.Itoa(total))
	c.Set(api.HeaderFilteredTotal, strconv.Itoa(filtered))
}

func page[T any](items []T, start, number int) []T {
	if start >= len(items) || number <= 0 {
		return []T{}
	}
	end := min(start+number, len(items))
	return items[start:end]
}
