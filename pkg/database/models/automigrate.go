package models

type Model interface{}

var models = []Model{}

func AutoMigrate(migrator interface {
	AutoMigrate(...interface{}) error
}) error {
	for _, m := range models {
		if err := migrator.AutoMigrate(m); err != nil {
			return err
		}
	}
	return nil
}

func registerForAutomigration(m Model) {
	models = append(models, m)
}
