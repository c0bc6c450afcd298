package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/warsztat/workshop-api/config"
	"github.com/warsztat/workshop-api/models"
)

// NewTestDB opens a migrated in-memory SQLite database. The pool is capped
// at one connection so every query sees the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db), "Failed to migrate test database")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// Fixtures is a small workshop: one client with a car, two mechanics, a
// manager and a service catalog.
type Fixtures struct {
	Client      models.Client
	OtherClient models.Client
	Vehicle     models.Vehicle
	OtherCar    models.Vehicle
	Mechanic    models.Employee
	Mechanic2   models.Employee
	Manager     models.Employee
	OilChange   models.Service // 30 min, 50.00
	BrakeCheck  models.Service // 45 min, 80.00
	Diagnostics models.Service // 105 min, 120.00
	Inspection  models.Service // 15 min, 20.00
}

// Seed inserts the standard fixtures
func Seed(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{
		Client:      models.Client{Auth0ID: "auth0|client", FirstName: "Jan", LastName: "Kowalski", Email: "jan@example.com"},
		OtherClient: models.Client{Auth0ID: "auth0|other", FirstName: "Anna", LastName: "Nowak", Email: "anna@example.com"},
		Mechanic:    models.Employee{Auth0ID: "auth0|mechanic", FirstName: "Piotr", LastName: "Wisniewski", Email: "piotr@example.com"},
		Mechanic2:   models.Employee{Auth0ID: "auth0|mechanic2", FirstName: "Ewa", LastName: "Zielinska", Email: "ewa@example.com"},
		Manager:     models.Employee{Auth0ID: "auth0|manager", FirstName: "Marek", LastName: "Lewandowski", Email: "marek@example.com", IsManager: true},
		OilChange:   models.Service{Name: "Oil change", Price: decimal.RequireFromString("50.00"), RepairTime: 30},
		BrakeCheck:  models.Service{Name: "Brake check", Price: decimal.RequireFromString("80.00"), RepairTime: 45},
		Diagnostics: models.Service{Name: "Engine diagnostics", Price: decimal.RequireFromString("120.00"), RepairTime: 105},
		Inspection:  models.Service{Name: "Quick inspection", Price: decimal.RequireFromString("20.00"), RepairTime: 15},
	}

	for _, rec := range []interface{}{
		&f.Client, &f.OtherClient,
		&f.Mechanic, &f.Mechanic2, &f.Manager,
		&f.OilChange, &f.BrakeCheck, &f.Diagnostics, &f.Inspection,
	} {
		require.NoError(t, db.Create(rec).Error)
	}

	f.Vehicle = models.Vehicle{Brand: "Skoda", Model: "Octavia", ProductionYear: 2018, VIN: "TMBJJ7NE1J0000001", RegistrationNumber: "WA12345", ClientID: f.Client.ID}
	f.OtherCar = models.Vehicle{Brand: "Toyota", Model: "Corolla", ProductionYear: 2020, VIN: "JTDBR32E000000002", RegistrationNumber: "KR54321", ClientID: f.OtherClient.ID}
	require.NoError(t, db.Create(&f.Vehicle).Error)
	require.NoError(t, db.Create(&f.OtherCar).Error)

	return f
}

// Day returns the given time of day on a fixed test date in UTC
func Day(day, hour, minute int) time.Time {
	return time.Date(2031, time.January, day, hour, minute, 0, 0, time.UTC)
}

// CreateOrder inserts an order directly, bypassing scheduling checks
func CreateOrder(t *testing.T, db *gorm.DB, order models.Order) models.Order {
	t.Helper()

	if order.Status == "" {
		order.Status = models.StatusPending
	}
	require.NoError(t, db.Omit("Services.*").Create(&order).Error)
	return order
}

// ClientIdentity, EmployeeIdentity and ManagerIdentity build caller identities
func ClientIdentity(c models.Client) models.Identity {
	return models.Identity{UserID: c.ID, Role: models.RoleClient}
}

func EmployeeIdentity(e models.Employee) models.Identity {
	return models.Identity{UserID: e.ID, Role: models.RoleEmployee}
}

func ManagerIdentity(e models.Employee) models.Identity {
	return models.Identity{UserID: e.ID, Role: models.RoleManager}
}
