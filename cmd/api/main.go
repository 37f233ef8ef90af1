package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pastoralpass/internal/config"
	"pastoralpass/internal/directory"
	"pastoralpass/internal/httpmiddleware"
	"pastoralpass/internal/insights"
	"pastoralpass/internal/ledger"
	"pastoralpass/internal/metrics"
	"pastoralpass/internal/queue"
	"pastoralpass/internal/report"
	"pastoralpass/internal/stats"
	"pastoralpass/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	var (
		kv          store.Store
		redisClient *store.Redis
	)
	switch cfg.StorageBackend {
	case "redis":
		redisClient = store.NewRedis(cfg.RedisAddr)
		kv = redisClient
	case "postgres":
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
		kv = pg
	default:
		log.Println("using in-memory storage; data is lost on restart")
		kv = store.NewMemory()
	}

	dir := directory.New(kv)
	led := ledger.New(kv)

	// Seeding is a startup step, not a side effect of the first read.
	if err := dir.Seed(ctx); err != nil {
		return err
	}

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(16)
	} else {
		if redisClient == nil {
			redisClient = store.NewRedis(cfg.RedisAddr)
		}
		q = queue.NewRedisQueue(redisClient.Client, "pastoralpass:insights")
	}

	ai := insights.New(cfg.InsightsURL, cfg.InsightsModel, cfg.GeminiAPIKey, cfg.InsightsSkip)

	// With the in-memory queue there is no separate worker process, so the
	// api consumes its own jobs.
	if cfg.QueueBackend == "memory" {
		workerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		jobs, err := q.Consume(workerCtx)
		if err != nil {
			return err
		}
		go func() {
			for job := range jobs {
				processInsightJob(workerCtx, job, dir, led, ai, kv)
			}
		}()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.NewRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitPerMin).Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		redisHealthy := true
		if redisClient != nil {
			redisHealthy = redisClient.Healthy(c.Request.Context())
			if !redisHealthy {
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, gin.H{"status": "ok", "storage": cfg.StorageBackend, "redis": redisHealthy})
	})

	r.GET("/v1/categories", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"categories": directory.Categories()})
	})

	r.GET("/v1/students", func(c *gin.Context) {
		students, err := dir.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"students": students})
	})

	r.POST("/v1/students", func(c *gin.Context) {
		var req struct {
			Name     string `json:"name" binding:"required"`
			Pastoral string `json:"pastoral" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		s, err := dir.Add(c.Request.Context(), req.Name, req.Pastoral)
		if err != nil {
			var unknown directory.ErrUnknownCategory
			if errors.As(err, &unknown) {
				c.JSON(http.StatusBadRequest, gin.H{"error": unknown.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.StudentsRegistered.Inc()
		c.JSON(http.StatusCreated, s)
	})

	r.DELETE("/v1/students/:id", func(c *gin.Context) {
		// Deleting never touches attendance history; past records keep their
		// own name/pastoral snapshots.
		if err := dir.Delete(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.POST("/v1/scan", func(c *gin.Context) {
		var req struct {
			Code string `json:"code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		student, ok, err := dir.Resolve(c.Request.Context(), req.Code)
		if err != nil {
			metrics.Scans.WithLabelValues(metrics.OutcomeError).Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			metrics.Scans.WithLabelValues(metrics.OutcomeNotFound).Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "Aluno não encontrado. Verifique o cadastro."})
			return
		}

		rec, err := led.Mark(c.Request.Context(), student)
		if err != nil {
			var dup ledger.DuplicateError
			if errors.As(err, &dup) {
				metrics.Scans.WithLabelValues(metrics.OutcomeDuplicate).Inc()
				c.JSON(http.StatusConflict, gin.H{"error": dup.Error()})
				return
			}
			metrics.Scans.WithLabelValues(metrics.OutcomeError).Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		metrics.Scans.WithLabelValues(metrics.OutcomeConfirmed).Inc()
		c.JSON(http.StatusCreated, gin.H{
			"record":  rec,
			"message": student.Name + " - Presença Confirmada!",
		})
	})

	r.GET("/v1/attendance", func(c *gin.Context) {
		records, err := led.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"attendance": records})
	})

	r.GET("/v1/stats/overview", func(c *gin.Context) {
		students, records, err := snapshots(c.Request.Context(), dir, led)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		overview := stats.Compute(students, records, time.Now())
		c.JSON(http.StatusOK, gin.H{
			"overview": overview,
			"recent":   stats.Recent(records, 10),
		})
	})

	r.GET("/v1/stats/weekly", func(c *gin.Context) {
		students, records, err := snapshots(c.Request.Context(), dir, led)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"series": stats.WeeklySeries(students, records, time.Now())})
	})

	r.GET("/v1/reports", func(c *gin.Context) {
		date, rows, err := buildReport(c, dir, led)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		present, absent := report.Tally(rows)
		c.JSON(http.StatusOK, gin.H{
			"date":    date,
			"rows":    rows,
			"present": present,
			"absent":  absent,
		})
	})

	r.GET("/v1/reports/export", func(c *gin.Context) {
		date, rows, err := buildReport(c, dir, led)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="presenca_`+date+`.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(report.CSV(rows, date)))
	})

	r.POST("/v1/insights", func(c *gin.Context) {
		job := queue.Job{ID: uuid.NewString(), RequestedAt: time.Now().UTC()}
		if err := q.Publish(c.Request.Context(), job); err != nil {
			log.Printf("insight job publish failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "insights indisponíveis no momento"})
			return
		}
		metrics.InsightJobs.WithLabelValues("published").Inc()
		c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
	})

	r.GET("/v1/insights", func(c *gin.Context) {
		var summary insights.Summary
		found, err := kv.Load(c.Request.Context(), store.InsightsKey, &summary)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !found {
			c.JSON(http.StatusOK, gin.H{"summary": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

func snapshots(ctx context.Context, dir *directory.Directory, led *ledger.Ledger) ([]directory.Student, []ledger.Record, error) {
	students, err := dir.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	records, err := led.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return students, records, nil
}

func buildReport(c *gin.Context, dir *directory.Directory, led *ledger.Ledger) (string, []report.Row, error) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().UTC().Format(ledger.DateLayout)
	}
	students, records, err := snapshots(c.Request.Context(), dir, led)
	if err != nil {
		return "", nil, err
	}
	rows := report.Build(students, records, date)
	rows = report.Filter(rows, c.Query("pastoral"), c.DefaultQuery("status", report.StatusAll))
	return date, rows, nil
}

func processInsightJob(ctx context.Context, job queue.Job, dir *directory.Directory, led *ledger.Ledger, ai *insights.Client, kv store.Store) {
	students, records, err := snapshots(ctx, dir, led)
	if err != nil {
		log.Printf("insight job %s: snapshot failed: %v", job.ID, err)
		return
	}
	summary := insights.Summary{
		Text:        ai.Summarize(ctx, students, records),
		GeneratedAt: time.Now().UTC(),
	}
	if err := kv.Save(ctx, store.InsightsKey, summary); err != nil {
		log.Printf("insight job %s: save failed: %v", job.ID, err)
		return
	}
	metrics.InsightJobs.WithLabelValues("processed").Inc()
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
