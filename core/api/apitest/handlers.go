package apitest

import (
	"sort"
	"strings"

	"lair-scanner/core/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
}

func (s *Server) createScanner(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scanner := &models.Scanner{ID: uuid.NewString()}
	s.scanners[scanner.ID] = scanner
	return c.Status(fiber.StatusCreated).JSON(scanner)
}

func (s *Server) retrieveScanner(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scanner, ok := s.scanners[c.Params("id")]
	if !ok {
		return notFound(c)
	}
	return c.JSON(scanner)
}

func (s *Server) updateScanner(c *fiber.Ctx) error {
	var body struct {
		Properties models.ScannerProperties `json:"properties"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.ErrBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scanner, ok := s.scanners[c.Params("id")]
	if !ok {
		return notFound(c)
	}
	if scanner.Properties.SourcePaths == nil {
		scanner.Properties.SourcePaths = make(map[string]string)
	}
	for id, path := range body.Properties.SourcePaths {
		scanner.Properties.SourcePaths[id] = path
	}
	return c.JSON(scanner)
}

func (s *Server) findSources(c *fiber.Ctx) error {
	names := map[string]struct{}{}
	if name := c.Query("name"); name != "" {
		names[name] = struct{}{}
	}
	for _, raw := range c.Context().QueryArgs().PeekMulti("name[]") {
		names[string(raw)] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matching []models.Source
	for _, src := range s.sources {
		if _, ok := names[src.Name]; len(names) == 0 || ok {
			matching = append(matching, *src)
		}
	}

	start, number := c.QueryInt("start", 0), c.QueryInt("number", 100)
	setPagination(c, start, number, len(s.sources), len(matching))
	return c.JSON(page(matching, start, number))
}

func (s *Server) createSource(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil || body.Name == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "name is required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, src := range s.sources {
		if src.Name == body.Name {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "name is already taken"})
		}
	}

	source := &models.Source{ID: uuid.NewString(), Name: body.Name}
	s.sources = append(s.sources, source)
	return c.Status(fiber.StatusCreated).JSON(source)
}

func (s *Server) updateSource(c *fiber.Ctx) error {
	var body struct {
		Properties models.SourceProperties `json:"properties"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.ErrBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source := s.source(c.Params("id"))
	if source == nil {
		return notFound(c)
	}
	source.Properties = body.Properties
	return c.JSON(source)
}

func (s *Server) createScanPath(c *fiber.Ctx) error {
	var body models.ScanPath
	if err := c.BodyParser(&body); err != nil || body.Path == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "path is required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source := s.source(c.Params("id"))
	if source == nil {
		return notFound(c)
	}
	body.ID = uuid.NewString()
	source.ScanPaths = append(source.ScanPaths, body)
	return c.Status(fiber.StatusCreated).JSON(body)
}

func (s *Server) deleteScanPath(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	source := s.source(c.Params("id"))
	if source == nil {
		return notFound(c)
	}
	for i, sp := range source.ScanPaths {
		if sp.ID == c.Params("scanPathId") {
			source.ScanPaths = append(source.ScanPaths[:i], source.ScanPaths[i+1:]...)
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return notFound(c)
}

func (s *Server) findFiles(c *fiber.Ctx) error {
	sourceID := c.Query("sourceId")
	dir := strings.TrimSuffix(c.Query("directory"), "/")

	s.mu.Lock()
	all := append([]models.File(nil), s.files[sourceID]...)
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Path < all[j].Path })

	var matching []models.File
	for _, f := range all {
		if dir == "" || f.Path == dir || strings.HasPrefix(f.Path, dir+"/") {
			matching = append(matching, f)
		}
	}

	start, number := c.QueryInt("start", 0), c.QueryInt("number", 100)
	setPagination(c, start, number, len(all), len(matching))
	return c.JSON(page(matching, start, number))
}

func (s *Server) createScan(c *fiber.Ctx) error {
	var body struct {
		SourceID  string `json:"sourceId"`
		ScannerID string `json:"scannerId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.ErrBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scan := &models.Scan{ID: uuid.NewString(), SourceID: body.SourceID, ScannerID: body.ScannerID, State: "scanning"}
	s.scans[scan.ID] = scan
	return c.Status(fiber.StatusCreated).JSON(scan)
}

func (s *Server) addChanges(c *fiber.Ctx) error {
	var changes []models.Payload
	if err := c.BodyParser(&changes); err != nil {
		return fiber.ErrBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scans[c.Params("id")]; !ok {
		return notFound(c)
	}
	s.changes[c.Params("id")] = append(s.changes[c.Params("id")], changes...)
	return c.Status(fiber.StatusCreated).JSON(changes)
}

func (s *Server) updateScan(c *fiber.Ctx) error {
	var body struct {
		State      string `json:"state"`
		FilesCount int    `json:"filesCount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.ErrBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[c.Params("id")]
	if !ok {
		return notFound(c)
	}
	scan.State = body.State
	scan.FilesCount = body.FilesCount
	return c.JSON(scan)
}

func (s *Server) getSettings(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(s.settings)
}

func (s *Server) updateSettings(c *fiber.Ctx) error {
	var body models.Settings
	if err := c.BodyParser(&body); err != nil {
		return fiber.ErrBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if body.Ignores == nil {
		body.Ignores = []string{}
	}
	s.settings = body
	return c.JSON(s.settings)
}
