package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"campuscart/backend/internal/config"
	"campuscart/backend/internal/logger"
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/notify"
	"campuscart/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  create-user <email> <password> <first_name> <last_name> [role] [university_id]
  activate <user_id>
  suspend <user_id>
  notify <user_id> <type> <title> [message]
  notify-university <university_id> <type> <title> [message]
  broadcast <type> <title> [message]
  clear-read <user_id>`

var errUsage = errors.New("invalid arguments")

type app struct {
	store  *storage.Service
	notify *notify.Dispatcher
	out    io.Writer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logger.New(cfg.Log.Level, "console")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		lg.Fatal("failed to connect database", zap.Error(err))
	}
	// Redis carries notifications to connected users.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer func() { _ = rdb.Close() }()

	s := storage.NewStorageService(db, rdb, cfg.Redis.Channel)
	a := &app{store: s, notify: notify.NewDispatcher(s, lg), out: os.Stdout}

	if err := a.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usage)
			os.Exit(1)
		}
		lg.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "create-user":
		if len(args) < 4 || len(args) > 6 {
			return errUsage
		}
		return a.createUser(ctx, args)
	case "activate", "suspend":
		if len(args) != 1 {
			return errUsage
		}
		status := models.StatusActive
		if command == "suspend" {
			status = models.StatusSuspended
		}
		if err := a.store.SetUserStatus(ctx, args[0], status); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "User %s is now %s.\n", args[0], status)
	case "notify":
		if len(args) < 3 {
			return errUsage
		}
		n, err := a.notify.Deliver(ctx, args[0], request(args[1:]))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Notification %s sent to %s.\n", n.ID, args[0])
	case "notify-university":
		if len(args) < 3 {
			return errUsage
		}
		res, err := a.notify.DeliverToUniversity(ctx, args[0], request(args[1:]))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Delivered %d, failed %d.\n", res.Delivered, len(res.Failed))
	case "broadcast":
		if len(args) < 2 {
			return errUsage
		}
		if err := a.notify.DeliverToAll(ctx, request(args)); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Broadcast published.")
	case "clear-read":
		if len(args) != 1 {
			return errUsage
		}
		n, err := a.notify.ClearRead(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted %d read notifications.\n", n)
	default:
		return errUsage
	}
	return nil
}

func (a *app) createUser(ctx context.Context, args []string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(args[1]), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &models.User{
		Email:        args[0],
		PasswordHash: string(hash),
		FirstName:    args[2],
		LastName:     args[3],
		Role:         models.RoleStudent,
		Status:       models.StatusActive,
		IsVerified:   true,
		Language:     "en",
	}
	if len(args) > 4 {
		u.Role = args[4]
	}
	if u.Role != models.RoleStudent && u.Role != models.RoleAdmin {
		return fmt.Errorf("unknown role %q", u.Role)
	}
	if len(args) > 5 {
		u.UniversityID = &args[5]
	}
	if err := a.store.CreateUser(ctx, u); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %s created with id %s.\n", u.Email, u.ID)
	return nil
}

// request builds a notification from <type> <title> [message...].
func request(args []string) notify.Request {
	return notify.Request{
		Type:    models.NotificationType(args[0]),
		Title:   args[1],
		Message: strings.Join(args[2:], " "),
	}
}
