package domain

// Task バックログ上の未スケジュール作業
type Task struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Project     string `json:"project" yaml:"project" validate:"required"`
	TaskType    string `json:"taskType" yaml:"taskType" validate:"required"`
	Description string `json:"description" yaml:"description" validate:"required"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
}

// FindTask IDでタスクを検索する
func FindTask(tasks []Task, id string) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
