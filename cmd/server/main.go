/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Warp Rota Engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Optionally seed demo roles and staff
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: rota.db)
           Use ":memory:" for in-memory database
  -seed    Seed demo roles and staff on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/rota.db"

  # Run with in-memory database and demo data
  ./server -db=":memory:" -seed

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  No environment variables currently. All config via flags.
  Future: DATABASE_URL, PORT, LOG_LEVEL

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/rota-engine/api"
	"github.com/warp/rota-engine/factory"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/schedule"
	"github.com/warp/rota-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "rota.db", "SQLite database path")
	seed := flag.Bool("seed", false, "Seed demo roles and staff")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if *seed {
		if err := seedDemo(ctx, store); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Println("[Seed] Demo roles and staff loaded")
	}

	// Staff directory is derived from the qualified users of stored roles.
	availability, err := buildAvailability(ctx, store)
	if err != nil {
		log.Fatalf("Failed to build staff directory: %v", err)
	}

	// Initialize handler
	handler := api.NewHandler(store, store, store, availability)
	handler.Runs = store

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// buildAvailability assembles the static staff directory from the qualified
// users declared on stored roles.
func buildAvailability(ctx context.Context, store *sqlite.Store) (*schedule.StaticAvailability, error) {
	roles, err := store.ListRoles(ctx, "")
	if err != nil {
		return nil, err
	}
	staff := make([]schedule.Staff, 0)
	seen := make(map[rota.StaffID]bool)
	for _, role := range roles {
		for _, uid := range role.QualifiedUsers {
			if seen[uid] {
				continue
			}
			seen[uid] = true
			staff = append(staff, schedule.Staff{ID: uid, Name: string(uid)})
		}
	}
	return schedule.NewStaticAvailability(staff), nil
}

// seedDemo installs a pair of demo roles with weekday coverage patterns.
func seedDemo(ctx context.Context, store *sqlite.Store) error {
	definitions := []string{
		`{
			"id": "role-barista",
			"company_id": "demo",
			"title": "Barista",
			"qualified_users": ["alice", "bob", "carol"],
			"shifts": [
				{"name": "Morning", "start_day": "monday", "start_time": "06:00", "end_time": "14:00", "required_staff": 2},
				{"name": "Morning", "start_day": "tuesday", "start_time": "06:00", "end_time": "14:00", "required_staff": 2},
				{"name": "Morning", "start_day": "wednesday", "start_time": "06:00", "end_time": "14:00", "required_staff": 2},
				{"name": "Closing", "start_day": "friday", "start_time": "14:00", "end_time": "22:00", "required_staff": 1}
			]
		}`,
		`{
			"id": "role-security",
			"company_id": "demo",
			"title": "Night Security",
			"qualified_users": ["dave", "erin"],
			"shifts": [
				{"name": "Night Watch", "start_day": "friday", "end_day": "saturday", "start_time": "22:00", "end_time": "06:00", "required_staff": 1},
				{"name": "Night Watch", "start_day": "saturday", "end_day": "sunday", "start_time": "22:00", "end_time": "06:00", "required_staff": 1}
			]
		}`,
	}

	rf := factory.NewRoleFactory()
	for _, def := range definitions {
		role, err := rf.ParseRole(def)
		if err != nil {
			return err
		}
		if err := store.SaveRole(ctx, *role); err != nil {
			return err
		}
	}
	return nil
}
