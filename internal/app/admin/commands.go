package admin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/magabrotheeeer/qc-admin/internal/images"
	"github.com/magabrotheeeer/qc-admin/internal/models"
)

// dispatch маршрутизирует команду верхнего уровня.
func (a *App) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		a.sess.Logout()
		fmt.Fprintln(a.out, "Logged out.")
		return nil
	case "whoami":
		return a.whoami()
	case "company":
		return a.protected(func() error { return a.companyCmd(ctx, args) })
	case "product":
		return a.protected(func() error { return a.productCmd(ctx, args) })
	case "step":
		return a.protected(func() error { return a.stepCmd(ctx, args) })
	case "class":
		return a.protected(func() error { return a.classCmd(ctx, args) })
	case "images":
		return a.protected(func() error { return a.imagesCmd(ctx, args) })
	case "annotate":
		return a.protected(func() error { return a.annotateCmd(ctx, args) })
	default:
		a.usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *App) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <username> <password>")
	}
	user, err := a.sess.Login(ctx, models.Credentials{Username: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (id=%d).\n", user.Username, user.ID)
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: register <username> <email> <password>")
	}
	msg, err := a.sess.Register(ctx, models.Registration{
		Username: args[0],
		Email:    args[1],
		Password: args[2],
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) whoami() error {
	sess := a.sess.Session()
	if !sess.IsAuthenticated {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s (id=%d), session expires %s\n",
		sess.User.Username, sess.User.ID, sess.ExpiresAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (a *App) companyCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: company list|create|update|delete")
	}
	switch args[0] {
	case "list":
		items, err := a.companies.List(ctx)
		if err != nil {
			return err
		}
		for _, c := range items {
			fmt.Fprintf(a.out, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
		}
		return nil
	case "create":
		if len(args) != 2 {
			return fmt.Errorf("usage: company create <name>")
		}
		created, err := a.companies.Create(ctx, models.CompanyInput{Name: args[1]})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created company %d.\n", created.ID)
		return nil
	case "update":
		if len(args) != 3 {
			return fmt.Errorf("usage: company update <id> <name>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid company id: %s", args[1])
		}
		if _, err := a.companies.Update(ctx, id, models.CompanyInput{Name: args[2]}); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated company %d.\n", id)
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: company delete <id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid company id: %s", args[1])
		}
		if err := a.companies.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted company %d.\n", id)
		return nil
	default:
		return fmt.Errorf("unknown company action: %s", args[0])
	}
}

func (a *App) productCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: product list|create|update|delete")
	}
	switch args[0] {
	case "list":
		items, err := a.products.List(ctx)
		if err != nil {
			return err
		}
		for _, p := range items {
			fmt.Fprintf(a.out, "%d\t%s\tcompany=%d\n", p.ID, p.Name, p.CompanyID)
		}
		return nil
	case "create":
		if len(args) != 3 {
			return fmt.Errorf("usage: product create <name> <company-id>")
		}
		companyID, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid company id: %s", args[2])
		}
		created, err := a.products.Create(ctx, models.ProductInput{Name: args[1], CompanyID: companyID})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created product %d.\n", created.ID)
		return nil
	case "update":
		if len(args) != 4 {
			return fmt.Errorf("usage: product update <id> <name> <company-id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[1])
		}
		companyID, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid company id: %s", args[3])
		}
		if _, err := a.products.Update(ctx, id, models.ProductInput{Name: args[2], CompanyID: companyID}); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated product %d.\n", id)
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: product delete <id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[1])
		}
		if err := a.products.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted product %d.\n", id)
		return nil
	default:
		return fmt.Errorf("unknown product action: %s", args[0])
	}
}

func (a *App) stepCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: step list|available|create|update|delete")
	}
	switch args[0] {
	case "list":
		items, err := a.steps.List(ctx)
		if err != nil {
			return err
		}
		for _, s := range items {
			fmt.Fprintf(a.out, "%d\t#%d\t%s\tproduct=%d\n", s.ID, s.StepNumber, s.Name, s.ProductID)
		}
		return nil
	case "available":
		if len(args) != 2 {
			return fmt.Errorf("usage: step available <product-id>")
		}
		productID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[1])
		}
		if _, err := a.steps.List(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, a.steps.AvailableNumbers(productID, 0))
		return nil
	case "create":
		if len(args) != 4 {
			return fmt.Errorf("usage: step create <name> <product-id> <number>")
		}
		productID, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[2])
		}
		number, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid step number: %s", args[3])
		}
		// Политика номеров работает по свежему зеркалу
		if _, err := a.steps.List(ctx); err != nil {
			return err
		}
		created, err := a.steps.CreateStep(ctx, models.StepInput{
			Name:       args[1],
			ProductID:  productID,
			StepNumber: number,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created step %d.\n", created.ID)
		return nil
	case "update":
		if len(args) != 5 {
			return fmt.Errorf("usage: step update <id> <name> <product-id> <number>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step id: %s", args[1])
		}
		productID, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[3])
		}
		number, err := strconv.Atoi(args[4])
		if err != nil {
			return fmt.Errorf("invalid step number: %s", args[4])
		}
		if _, err := a.steps.List(ctx); err != nil {
			return err
		}
		if _, err := a.steps.UpdateStep(ctx, id, models.StepInput{
			Name:       args[2],
			ProductID:  productID,
			StepNumber: number,
		}); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated step %d.\n", id)
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: step delete <id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step id: %s", args[1])
		}
		if err := a.steps.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted step %d.\n", id)
		return nil
	default:
		return fmt.Errorf("unknown step action: %s", args[0])
	}
}

func (a *App) classCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: class list|create|update|delete")
	}
	switch args[0] {
	case "list":
		items, err := a.classes.List(ctx)
		if err != nil {
			return err
		}
		for _, c := range items {
			fmt.Fprintf(a.out, "%d\t%s\tproduct=%d\n", c.ID, c.Class, c.ProductID)
		}
		return nil
	case "create":
		if len(args) != 3 {
			return fmt.Errorf("usage: class create <name> <product-id>")
		}
		productID, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[2])
		}
		created, err := a.classes.Create(ctx, models.ClassCountInput{Class: args[1], ProductID: productID})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created class %d.\n", created.ID)
		return nil
	case "update":
		if len(args) != 4 {
			return fmt.Errorf("usage: class update <id> <name> <product-id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid class id: %s", args[1])
		}
		productID, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[3])
		}
		if _, err := a.classes.Update(ctx, id, models.ClassCountInput{Class: args[2], ProductID: productID}); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated class %d.\n", id)
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: class delete <id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid class id: %s", args[1])
		}
		if err := a.classes.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted class %d.\n", id)
		return nil
	default:
		return fmt.Errorf("unknown class action: %s", args[0])
	}
}

func (a *App) imagesCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: images list|by-company|upload|delete|download|stats")
	}
	switch args[0] {
	case "list":
		items, err := a.imgs.List(ctx)
		if err != nil {
			return err
		}
		for _, group := range images.GroupByProduct(items) {
			fmt.Fprintf(a.out, "product %d:\n", group.ProductID)
			for _, img := range group.Images {
				fmt.Fprintf(a.out, "  %d\t%s\t%s\n", img.ID, img.Filename, img.Timestamp.Format("2006-01-02 15:04"))
			}
		}
		return nil
	case "by-company":
		if len(args) != 2 {
			return fmt.Errorf("usage: images by-company <company-id>")
		}
		companyID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid company id: %s", args[1])
		}
		items, err := a.imgs.ListByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		for _, img := range items {
			fmt.Fprintf(a.out, "%d\t%s\tproduct=%d\n", img.ID, img.Filename, img.ProductID)
		}
		return nil
	case "upload":
		if len(args) != 4 {
			return fmt.Errorf("usage: images upload <product-id> <step-id> <file>")
		}
		productID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[1])
		}
		stepID, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid step id: %s", args[2])
		}
		file, err := os.Open(args[3])
		if err != nil {
			return fmt.Errorf("could not open file: %w", err)
		}
		defer func() { _ = file.Close() }()

		outcome, err := a.imgs.Upload(ctx, productID, stepID, filepath.Base(args[3]), file)
		if err != nil {
			return err
		}
		if outcome.Warning != "" {
			fmt.Fprintf(a.out, "Uploaded with warning: %s\n", outcome.Warning)
			return nil
		}
		fmt.Fprintf(a.out, "Uploaded image %d.\n", outcome.Image.ID)
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: images delete <id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid image id: %s", args[1])
		}
		if err := a.imgs.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted image %d.\n", id)
		return nil
	case "download":
		if len(args) != 2 {
			return fmt.Errorf("usage: images download <dir>")
		}
		path, err := a.imgs.DownloadAll(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved %s.\n", path)
		return nil
	case "stats":
		stats, err := a.imgs.StorageStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d images, %d bytes\n", stats.TotalImages, stats.TotalSize)
		return nil
	default:
		return fmt.Errorf("unknown images action: %s", args[0])
	}
}

func (a *App) annotateCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: annotate status|set-key|test|watch|projects|create-project|import")
	}
	switch args[0] {
	case "status":
		hasKey, err := a.ls.KeyStatus(ctx)
		if err != nil {
			return err
		}
		if hasKey {
			fmt.Fprintln(a.out, "Annotation tool key is configured.")
		} else {
			fmt.Fprintln(a.out, "Annotation tool key is not configured.")
		}
		return nil
	case "set-key":
		if len(args) != 2 {
			return fmt.Errorf("usage: annotate set-key <key>")
		}
		if err := a.ls.SetKey(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Annotation tool key saved.")
		return nil
	case "test":
		connected, err := a.ls.TestConnection(ctx)
		if err != nil {
			return err
		}
		if connected {
			fmt.Fprintln(a.out, "Annotation tool is reachable.")
		} else {
			fmt.Fprintln(a.out, "Annotation tool is not reachable.")
		}
		return nil
	case "watch":
		a.ls.Poll(ctx, a.cfg.PollInterval, func(connected bool) {
			if connected {
				fmt.Fprintln(a.out, "connected")
			} else {
				fmt.Fprintln(a.out, "disconnected")
			}
		})
		return nil
	case "projects":
		projects, err := a.ls.ExistingProjects(ctx)
		if err != nil {
			return err
		}
		for _, p := range projects {
			fmt.Fprintf(a.out, "%d\t%s\n", p.ID, p.Title)
		}
		return nil
	case "create-project":
		if len(args) != 2 {
			return fmt.Errorf("usage: annotate create-project <product-id>")
		}
		productID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[1])
		}
		result, err := a.ls.CreateProject(ctx, productID)
		if err != nil {
			return err
		}
		if result.Existing {
			fmt.Fprintf(a.out, "Project %d already exists.\n", result.ProjectID)
			return nil
		}
		fmt.Fprintf(a.out, "Created project %d.\n", result.ProjectID)
		return nil
	case "import":
		if len(args) != 3 {
			return fmt.Errorf("usage: annotate import <product-id> <project-id>")
		}
		productID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[1])
		}
		projectID, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid project id: %s", args[2])
		}
		result, err := a.ls.ImportImages(ctx, productID, projectID)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Imported %d images into project %d.\n", result.Imported, result.ProjectID)
		return nil
	default:
		return fmt.Errorf("unknown annotate action: %s", args[0])
	}
}
