package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrLimitReached = errors.New("limit reached")
)

// Storage is everything the API needs. Implementations: memory and postgres.
type Storage interface {
	UsersStorage
	MealPlansStorage
	DayPlansStorage
	WeightsStorage
	MeasurementsStorage
	RemindersStorage
	ReportsStorage

	// Ping проверяет соединение (для memory всегда nil)
	Ping(ctx context.Context) error

	// Close закрывает соединение (для Postgres)
	Close() error
}

// User is an account together with its nutrition profile.
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	Age           *int
	HeightCm      *float64
	WeightKg      *float64
	Gender        *string
	Goal          *string
	ActivityLevel string
	Allergies     []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UsersStorage interface {
	// CreateUser заполняет ID и временные метки; ErrConflict, если email занят
	CreateUser(ctx context.Context, user *User) error

	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail ищет по email в нижнем регистре
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdateUser сохраняет профильные поля (email и пароль не меняются)
	UpdateUser(ctx context.Context, user *User) error
}

// MealPlan is a stored week plan. Payload holds JSON {"week":[...]}.
type MealPlan struct {
	ID        int64
	UserID    int64
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Source    string // ai | fallback | custom
	IsCurrent bool
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MealPlansStorage interface {
	// SaveCurrentMealPlan сохраняет план как текущий, предыдущий текущий снимается
	SaveCurrentMealPlan(ctx context.Context, plan *MealPlan) error

	// GetCurrentMealPlan возвращает ErrNotFound, если текущего плана нет
	GetCurrentMealPlan(ctx context.Context, userID int64) (*MealPlan, error)

	// UpdateMealPlanPayload заменяет содержимое плана пользователя
	UpdateMealPlanPayload(ctx context.Context, userID, planID int64, payload []byte) error

	// ListMealPlans: история, новые первыми
	ListMealPlans(ctx context.Context, userID int64, limit, offset int) ([]MealPlan, error)
}

// DayPlanRecord is a separately generated day plan.
type DayPlanRecord struct {
	ID        int64
	UserID    int64
	Day       string // метка дня
	Date      string // YYYY-MM-DD, день генерации
	Source    string
	Payload   []byte
	CreatedAt time.Time
}

type DayPlansStorage interface {
	CreateDayPlan(ctx context.Context, plan *DayPlanRecord) error
	ListDayPlans(ctx context.Context, userID int64, limit, offset int) ([]DayPlanRecord, error)
}

type WeightEntry struct {
	ID        int64
	UserID    int64
	WeightKg  float64
	Date      string // YYYY-MM-DD
	CreatedAt time.Time
}

type WeightsStorage interface {
	CreateWeight(ctx context.Context, entry *WeightEntry) error

	// ListWeights возвращает записи за период по возрастанию даты; пустые границы не ограничивают
	ListWeights(ctx context.Context, userID int64, from, to string) ([]WeightEntry, error)

	// LatestWeight: запись с максимальной датой (при равенстве: последняя созданная)
	LatestWeight(ctx context.Context, userID int64) (*WeightEntry, error)

	DeleteWeight(ctx context.Context, userID, id int64) error
}

// Measurement holds body measurements in centimetres.
type Measurement struct {
	ID        int64
	UserID    int64
	Date      string
	WaistCm   *float64
	ChestCm   *float64
	HipsCm    *float64
	ArmCm     *float64
	LegCm     *float64
	CreatedAt time.Time
}

type MeasurementsStorage interface {
	CreateMeasurement(ctx context.Context, m *Measurement) error
	ListMeasurements(ctx context.Context, userID int64, from, to string) ([]Measurement, error)
	DeleteMeasurement(ctx context.Context, userID, id int64) error
}

// Reminder is a medication reminder.
type Reminder struct {
	ID          int64
	UserID      int64
	Name        string
	Dosage      string
	Comment     string
	TimeMinutes int // 0..1439
	DaysMask    int // bit0 = понедельник .. bit6 = воскресенье
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RemindersStorage interface {
	// CreateReminder возвращает ErrLimitReached, если у пользователя уже limit напоминаний
	CreateReminder(ctx context.Context, r *Reminder, limit int) error
	GetReminder(ctx context.Context, userID, id int64) (*Reminder, error)

	// ListReminders: по времени приёма
	ListReminders(ctx context.Context, userID int64) ([]Reminder, error)
	UpdateReminder(ctx context.Context, r *Reminder) error
	DeleteReminder(ctx context.Context, userID, id int64) error
}

type ReportsStorage interface {
	// CreateReport создаёт новый отчёт (metadata + optional data for local mode)
	CreateReport(ctx context.Context, report *ReportMeta) error

	// GetReport возвращает отчёт пользователя по ID вместе с данными
	GetReport(ctx context.Context, userID int64, id uuid.UUID) (*ReportMeta, error)

	// ListReports возвращает список отчётов пользователя с пагинацией (без данных)
	ListReports(ctx context.Context, userID int64, limit, offset int) ([]ReportMeta, error)

	DeleteReport(ctx context.Context, userID int64, id uuid.UUID) error
}

// ReportMeta is report metadata.
type ReportMeta struct {
	ID        uuid.UUID
	UserID    int64
	Format    string  // "pdf" or "csv"
	FromDate  string  // YYYY-MM-DD
	ToDate    string  // YYYY-MM-DD
	ObjectKey *string // S3 object key (NULL for local mode)
	SizeBytes int64
	Status    string // "ready" or "failed"
	Error     *string
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      []byte // local mode only
}
