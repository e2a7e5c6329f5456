package httppresentation

import (
	"time"

	domlesson "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	domorder "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
)

type lessonResponse struct {
	ID       string  `json:"_id"`
	Topic    string  `json:"topic"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Space    int     `json:"space"`
	Image    string  `json:"image"`
}

func toLessonResponses(ls []*domlesson.Lesson) []lessonResponse {
	out := make([]lessonResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, lessonResponse{
			ID:       l.ID,
			Topic:    l.Topic,
			Location: l.Location,
			Price:    l.Price,
			Space:    l.Space,
			Image:    l.Image,
		})
	}
	return out
}

// updateLessonRequest accepts only lesson fields; _id is tolerated so a
// client can send back what it read.
type updateLessonRequest struct {
	ID       *string  `json:"_id"`
	Topic    *string  `json:"topic"`
	Location *string  `json:"location"`
	Price    *float64 `json:"price"`
	Space    *int     `json:"space"`
	Image    *string  `json:"image"`
}

func (r updateLessonRequest) patch() domlesson.Patch {
	return domlesson.Patch{
		Topic:    r.Topic,
		Location: r.Location,
		Price:    r.Price,
		Space:    r.Space,
		Image:    r.Image,
	}
}

type addLessonResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message  string `json:"message"`
	AdminKey string `json:"adminKey"`
}

type placeOrderRequest struct {
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	Postcode      string   `json:"postcode"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	LessonIDs     []string `json:"lessonIDs"`
	Quantities    []int    `json:"quantities"`
	PaymentMethod string   `json:"paymentMethod"`
	CardLast4     string   `json:"cardLast4"`
	CardBrand     string   `json:"cardBrand"`
}

type placeOrderResponse struct {
	Message        string `json:"message"`
	InsertedID     string `json:"insertedId"`
	PaymentStatus  string `json:"paymentStatus"`
	PaymentMessage string `json:"paymentMessage"`
}

type orderResponse struct {
	ID             string    `json:"_id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	Country        string    `json:"country"`
	Postcode       string    `json:"postcode"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	LessonIDs      []string  `json:"lessonIDs"`
	Quantities     []int     `json:"quantities"`
	PaymentMethod  string    `json:"paymentMethod"`
	PaymentStatus  string    `json:"paymentStatus"`
	PaymentMessage string    `json:"paymentMessage"`
	CardLast4      string    `json:"cardLast4,omitempty"`
	CardBrand      string    `json:"cardBrand,omitempty"`
	Date           time.Time `json:"date"`
}

func toOrderResponses(orders []*domorder.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderResponse{
			ID:             o.ID,
			FirstName:      o.Customer.FirstName,
			LastName:       o.Customer.LastName,
			Address:        o.Customer.Address,
			City:           o.Customer.City,
			Country:        o.Customer.Country,
			Postcode:       o.Customer.Postcode,
			Phone:          o.Customer.Phone,
			Email:          o.Customer.Email,
			LessonIDs:      o.LessonIDs,
			Quantities:     o.Quantities,
			PaymentMethod:  string(o.PaymentMethod),
			PaymentStatus:  string(o.PaymentStatus),
			PaymentMessage: o.PaymentMessage,
			CardLast4:      o.CardLast4,
			CardBrand:      o.CardBrand,
			Date:           o.Date,
		})
	}
	return out
}
