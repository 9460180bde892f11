package dto

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type SelectCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type SelectedCategoryResponse struct {
	Name     string `json:"name,omitempty"`
	Selected bool   `json:"selected"`
}
