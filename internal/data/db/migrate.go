package db

import (
	types "github.com/modulearn/backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Identity
		// =========================
		&types.User{},

		// =========================
		// Course authoring tree
		// =========================
		&types.Course{},
		&types.CourseModule{},
		&types.CourseItem{},

		// =========================
		// Content kinds (owned by the content subsystems; migrated here
		// so local/dev deployments are self-contained)
		// =========================
		&types.LessonContent{},
		&types.Forum{},
		&types.CourseTask{},
		&types.Quiz{},
		&types.Survey{},
		&types.CourseActivity{},

		// =========================
		// Progress ledger
		// =========================
		&types.Enrollment{},
		&types.ItemProgress{},
		&types.ModuleProgress{},
		&types.CourseProgress{},
	)
}
