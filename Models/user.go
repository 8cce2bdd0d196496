package Models

type User struct {
	Id           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	Password     []byte `json:"-"`
	Permission   int    `json:"permission"` // 4 = admin, lower levels for staff roles
	DepartmentID *uint  `json:"department_id"`
}

type Department struct {
	Id   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}
