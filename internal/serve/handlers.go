package serve

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"zazasite/internal/domain/content"
	"zazasite/internal/download"
	"zazasite/internal/posts"
	"zazasite/internal/trends"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	out := fiber.Map{
		"status": "ok",
		"time":   s.opt.Now().UTC().Format(time.RFC3339),
	}
	if s.opt.Posts != nil {
		if coll, err := s.opt.Posts.Get(c.UserContext()); err == nil {
			out["posts"] = coll.Len()
		}
	}
	return c.JSON(out)
}

// ===================== trends =====================

func (s *Server) authorizedCron(c *fiber.Ctx) bool {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}
	if s.opt.CronSecret == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.opt.CronSecret)) == 1
}

func (s *Server) handleCronIngest(c *fiber.Ctx) error {
	if !s.authorizedCron(c) {
		s.log.Warn().Str("ip", c.IP()).Msg("unauthorized cron call")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}
	if s.opt.Trends == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "trend ingestion is disabled",
		})
	}

	// the run outlives a client that disconnects
	ctx, cancel := context.WithTimeout(context.Background(), s.opt.RunTimeout)
	defer cancel()

	res, err := s.opt.Trends.Run(ctx)
	switch {
	case errors.Is(err, trends.ErrRunInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   trends.ErrRunInProgress.Error(),
		})
	case err != nil:
		s.log.Error().Err(err).Msg("trend ingestion failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "ingestion failed",
		})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"timestamp": s.opt.Now().UTC().Format(time.RFC3339),
		"results":   res,
		"message":   "Trend ingestion completed",
	})
}

func (s *Server) handleDebugTrends(c *fiber.Ctx) error {
	if s.opt.Clusters == nil {
		return fiber.ErrServiceUnavailable
	}
	limit := c.QueryInt("limit", defaultTrendLimit)
	if limit <= 0 {
		limit = defaultTrendLimit
	}
	if limit > maxTrendLimit {
		limit = maxTrendLimit
	}
	clusters, err := s.opt.Clusters.LatestClusters(limit)
	if err != nil {
		return err
	}
	if clusters == nil {
		clusters = []content.TopicCluster{}
	}
	return c.JSON(fiber.Map{
		"count":  len(clusters),
		"topics": clusters,
	})
}

func (s *Server) handleDebugExport(c *fiber.Ctx) error {
	if s.opt.Clusters == nil {
		return fiber.ErrServiceUnavailable
	}
	clusters, err := s.opt.Clusters.LatestClusters(0)
	if err != nil {
		return err
	}
	if clusters == nil {
		clusters = []content.TopicCluster{}
	}
	now := s.opt.Now().UTC()
	body, err := json.MarshalIndent(fiber.Map{
		"exportedAt": now.Format(time.RFC3339),
		"count":      len(clusters),
		"topics":     clusters,
	}, "", "  ")
	if err != nil {
		return err
	}
	c.Attachment("trends-export-" + now.Format(time.DateOnly) + ".json")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}

// ===================== downloads =====================

func (s *Server) handleDownload(c *fiber.Ctx) error {
	kind := c.Query("type")
	if !download.Valid(kind) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown download type",
			"types": download.Types(),
		})
	}
	var buf bytes.Buffer
	if err := s.opt.Downloads.Write(&buf, kind); err != nil {
		s.log.Error().Err(err).Str("type", kind).Msg("download failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build archive",
		})
	}
	c.Attachment(download.FileName(kind))
	c.Set(fiber.HeaderContentType, "application/zip")
	return c.Send(buf.Bytes())
}

// ===================== posts =====================

func (s *Server) collection(c *fiber.Ctx) (*posts.Collection, error) {
	if s.opt.Posts == nil {
		return posts.New(nil), nil
	}
	coll, err := s.opt.Posts.Get(c.UserContext())
	if err != nil {
		return nil, err
	}
	return coll.WithClock(s.opt.Now), nil
}

func postList(c *fiber.Ctx, items []content.Post) error {
	if items == nil {
		items = []content.Post{}
	}
	return c.JSON(fiber.Map{
		"total": len(items),
		"posts": items,
	})
}

func (s *Server) handlePosts(c *fiber.Ctx) error {
	coll, err := s.collection(c)
	if err != nil {
		return err
	}
	return postList(c, coll.ByCategory(c.Query("category")))
}

func (s *Server) handleFeatured(c *fiber.Ctx) error {
	coll, err := s.collection(c)
	if err != nil {
		return err
	}
	return postList(c, coll.Featured())
}

func (s *Server) handlePopular(c *fiber.Ctx) error {
	coll, err := s.collection(c)
	if err != nil {
		return err
	}
	return postList(c, coll.Popular())
}

func (s *Server) handleRecent(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", strconv.Itoa(defaultRecentDays)))
	if err != nil || days <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "days must be a positive integer",
		})
	}
	coll, err := s.collection(c)
	if err != nil {
		return err
	}
	return postList(c, coll.Recent(days))
}

func (s *Server) handlePost(c *fiber.Ctx) error {
	coll, err := s.collection(c)
	if err != nil {
		return err
	}
	p, ok := coll.BySlug(c.Params("slug"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "post not found",
		})
	}
	return c.JSON(p)
}

type categoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *Server) handleCategories(c *fiber.Ctx) error {
	coll, err := s.collection(c)
	if err != nil {
		return err
	}
	counts := coll.Categories()
	out := make([]categoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, categoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Name < out[j].Name
		}
		return out[i].Count > out[j].Count
	})
	return c.JSON(fiber.Map{
		"total":      coll.Len(),
		"categories": out,
	})
}
