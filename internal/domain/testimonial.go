package domain

type Testimonial struct {
	ID               string `json:"id"`
	CustomerName     string `json:"customerName"`
	Location         string `json:"location"`
	Content          string `json:"content"`
	Rating           int    `json:"rating"`
	Image            string `json:"image,omitempty"`
	ProductPurchased string `json:"productPurchased,omitempty"`
}

type Subscriber struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}
