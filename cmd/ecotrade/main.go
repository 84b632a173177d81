package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/jvegav/EcoTrade/internal/api/dto"
	clientapi "github.com/jvegav/EcoTrade/internal/client/api"
	"github.com/jvegav/EcoTrade/internal/client/catalog"
	"github.com/jvegav/EcoTrade/internal/client/credstore"
	"github.com/jvegav/EcoTrade/internal/client/provider"
	"github.com/jvegav/EcoTrade/internal/client/resolver"
	"github.com/jvegav/EcoTrade/internal/client/session"
	"github.com/jvegav/EcoTrade/internal/config"
	"github.com/jvegav/EcoTrade/internal/domain"
	"github.com/jvegav/EcoTrade/internal/observability"
)

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *credstore.Store
	api      *clientapi.Client
	resolver *resolver.Resolver
	catalog  *catalog.Synchronizer
	session  *session.Controller
}

func main() {
	cmd := flag.String("cmd", "catalog", "Command: login|register|logout|whoami|catalog|mine|publish")
	email := flag.String("email", "", "Account email")
	password := flag.String("password", "", "Account password")
	name := flag.String("name", "", "Display name (register)")
	nationality := flag.String("nationality", "", "Country of origin (register)")
	productName := flag.String("product", "", "Product name (publish)")
	price := flag.String("price", "", "Product price, e.g. 25.50 (publish)")
	description := flag.String("description", "", "Product description (publish)")
	useTime := flag.String("use-time", "", "How long the item was used, e.g. \"6 mois\" (publish)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	a, err := newApp(cfg, logger)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	switch *cmd {
	case "login":
		err = a.login(ctx, *email, *password)
	case "register":
		err = a.register(ctx, session.RegisterForm{
			Name:        *name,
			Email:       *email,
			Password:    *password,
			Nationality: *nationality,
		})
	case "logout":
		err = a.logout()
	case "whoami":
		err = a.whoami()
	case "catalog":
		err = a.showCatalog(ctx)
	case "mine":
		err = a.showMine(ctx)
	case "publish":
		err = a.publish(ctx, *productName, *price, *description, *useTime)
	default:
		err = fmt.Errorf("unknown command %q", *cmd)
	}

	// Every failure ends here as a message, never as a crash.
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	store := credstore.New(cfg.Client.CredentialsFile, logger)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	api := clientapi.New(cfg.Client.APIBaseURL, cfg.Client.Timeout(), store, logger)
	authProvider := provider.NewHTTPProvider(cfg.Client.AuthURL, cfg.Client.AuthAPIKey, cfg.Client.Timeout(), logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		api:      api,
		resolver: resolver.New(api),
		catalog:  catalog.NewSynchronizer(api, logger),
		session:  session.NewController(cfg.Client.Mode, api, authProvider, store, logger),
	}
	a.session.OnSuccess(func(identity domain.Identity) {
		fmt.Printf("Signed in as %s <%s>\n", identity.DisplayName, identity.Email)
	})
	return a, nil
}

func (a *app) login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("--email and --password are required")
	}
	_, err := a.session.Login(ctx, email, password)
	return err
}

func (a *app) register(ctx context.Context, form session.RegisterForm) error {
	if form.Email == "" || form.Password == "" || form.Name == "" {
		return fmt.Errorf("--name, --email and --password are required")
	}
	_, err := a.session.Register(ctx, form)
	return err
}

func (a *app) logout() error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func (a *app) whoami() error {
	record := a.store.Current()
	if record == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s <%s>\n", record.Identity.DisplayName, record.Identity.Email)
	if record.Credential != nil {
		fmt.Println("Session: delegated (bearer credential held)")
	} else {
		fmt.Println("Session: direct")
	}
	return nil
}

func (a *app) showCatalog(ctx context.Context) error {
	snapshot := a.catalog.LoadAll(ctx)
	printSnapshot(snapshot)
	return nil
}

// showMine re-resolves the internal id on every call: the stored identity
// only carries the external shape.
func (a *app) showMine(ctx context.Context) error {
	record := a.store.Current()
	if record == nil {
		return fmt.Errorf("sign in first")
	}

	user, err := a.resolver.Resolve(ctx, record.Identity.Email)
	if err != nil {
		if err == resolver.ErrNotFound {
			return fmt.Errorf("no backend account for %s", record.Identity.Email)
		}
		return err
	}

	snapshot := a.catalog.LoadForOwner(ctx, user.ID)
	fmt.Printf("Products published by %s:\n", record.Identity.DisplayName)
	printSnapshot(snapshot)
	return nil
}

func (a *app) publish(ctx context.Context, name, price, description, useTime string) error {
	record := a.store.Current()
	if record == nil {
		return fmt.Errorf("sign in first")
	}
	req, err := buildProductRequest(name, price, description, useTime)
	if err != nil {
		return err
	}

	user, err := a.resolver.Resolve(ctx, record.Identity.Email)
	if err != nil {
		return err
	}

	product, err := a.api.CreateProduct(ctx, user.ID, req)
	if err != nil {
		return err
	}
	fmt.Printf("Published %q (#%d) for %.2f\n", product.Name, product.ID, product.Price)

	// No local patching: a publish invalidates the snapshot, the catalog is
	// re-fetched wholesale.
	printSnapshot(a.catalog.LoadAll(ctx))
	return nil
}

// buildProductRequest turns the raw form input into a publish payload. The
// price is stored exactly as parsed from the entered string.
func buildProductRequest(name, price, description, useTime string) (dto.ProductRequest, error) {
	if name == "" || price == "" {
		return dto.ProductRequest{}, fmt.Errorf("--product and --price are required")
	}
	parsedPrice, err := strconv.ParseFloat(price, 64)
	if err != nil || parsedPrice < 0 {
		return dto.ProductRequest{}, fmt.Errorf("invalid price %q", price)
	}
	return dto.ProductRequest{
		Name:        name,
		Price:       parsedPrice,
		Description: description,
		UseTime:     useTime,
	}, nil
}

func printSnapshot(snapshot catalog.Snapshot) {
	if snapshot.Empty() {
		fmt.Println("No products yet.")
		return
	}
	for _, p := range snapshot.Products {
		fmt.Printf("#%-4d %-30s %8.2f  (%s)\n", p.ID, p.Name, p.Price, p.UseTime)
	}
}
