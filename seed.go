package main

import (
	"encoding/json"
	"os"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/warsztat/workshop-api/config"
	"github.com/warsztat/workshop-api/models"
)

type serviceJSON struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	RepairTime  int             `json:"repair_time"`
}

var defaultCatalog = []serviceJSON{
	{Name: "Oil and filter change", Price: decimal.RequireFromString("150.00"), RepairTime: 30},
	{Name: "Brake pads replacement", Price: decimal.RequireFromString("250.00"), RepairTime: 60},
	{Name: "Tyre change", Price: decimal.RequireFromString("120.00"), RepairTime: 45},
	{Name: "Computer diagnostics", Price: decimal.RequireFromString("100.00"), RepairTime: 30},
	{Name: "Air conditioning service", Price: decimal.RequireFromString("200.00"), RepairTime: 60},
	{Name: "Timing belt replacement", Price: decimal.RequireFromString("900.00"), RepairTime: 240},
}

func seedCmd() *cobra.Command {
	var (
		servicesFile string
		employee     models.Employee
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the service catalog and optionally a staff account",
		Long: `Seed inserts the repair service catalog, from --services-file when given.
With --employee-auth0-id it also creates a staff account, which is how
employees and managers get into the system.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, lg, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = lg.Sync() }()

			catalog := defaultCatalog
			if servicesFile != "" {
				if catalog, err = readCatalog(servicesFile); err != nil {
					return err
				}
			}

			db := config.GetDB()
			if err := config.Migrate(db); err != nil {
				return err
			}
			var staff []models.Employee
			if employee.Auth0ID != "" {
				staff = append(staff, employee)
			}
			if err := seedDatabase(db, catalog, staff); err != nil {
				return err
			}
			lg.Info("Seed completed", zap.Int("services", len(catalog)), zap.Int("employees", len(staff)))
			return nil
		},
	}

	cmd.Flags().StringVar(&servicesFile, "services-file", "", "path to a JSON service catalog")
	cmd.Flags().StringVar(&employee.Auth0ID, "employee-auth0-id", "", "Auth0 subject of a staff account to create")
	cmd.Flags().StringVar(&employee.Email, "employee-email", "", "email of the staff account")
	cmd.Flags().StringVar(&employee.FirstName, "employee-first-name", "", "first name of the staff account")
	cmd.Flags().StringVar(&employee.LastName, "employee-last-name", "", "last name of the staff account")
	cmd.Flags().BoolVar(&employee.IsManager, "manager", false, "make the staff account a manager")

	return cmd
}

func readCatalog(path string) ([]serviceJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read services file")
	}
	var catalog []serviceJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, errors.Wrap(err, "parse services file")
	}
	return catalog, nil
}

// seedDatabase inserts missing services and employees. Existing rows,
// matched by service name or Auth0 subject, are left untouched.
func seedDatabase(db *gorm.DB, catalog []serviceJSON, staff []models.Employee) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, s := range catalog {
			if s.Name == "" || s.RepairTime < 0 || s.Price.IsNegative() {
				return errors.Errorf("invalid catalog entry %q", s.Name)
			}
			service := models.Service{
				Name:       s.Name,
				Price:      s.Price.Round(2),
				RepairTime: s.RepairTime,
			}
			if s.Description != "" {
				service.Description = &s.Description
			}
			if err := tx.Where(models.Service{Name: s.Name}).FirstOrCreate(&service).Error; err != nil {
				return errors.Wrapf(err, "seed service %q", s.Name)
			}
		}

		for _, e := range staff {
			if e.Email == "" || e.FirstName == "" {
				return errors.Errorf("employee %q needs an email and a first name", e.Auth0ID)
			}
			employee := e
			if err := tx.Where(models.Employee{Auth0ID: e.Auth0ID}).FirstOrCreate(&employee).Error; err != nil {
				return errors.Wrapf(err, "seed employee %q", e.Auth0ID)
			}
		}
		return nil
	})
}
