package handlers

import "time"

// CreateShortURLRequest is the body of POST /shorten. Both fields are
// required; a missing field or a non-numeric expireInHours is rejected by
// schema validation before the handler runs. Unknown fields are ignored.
type CreateShortURLRequest struct {
	Body struct {
		_             struct{} `additionalProperties:"true" json:"-"`
		OriginalURL   string  `doc:"The URL to redirect to"                                       example:"https://example.com/very/long/path" json:"originalUrl"`
		ExpireInHours float64 `doc:"Hours until the link expires. Negative values create expired links" example:"24"                                json:"expireInHours"`
	}
}

// CreateShortURLResponse is returned for a stored mapping.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL" header:"Location"`
	Body     struct {
		ShortURL    string    `doc:"The full short URL"         example:"http://localhost:3000/Xy3_a-9Q"     json:"shortUrl"`
		ExpiresAt   time.Time `doc:"When the link stops working" json:"expiresAt"`
		Code        string    `doc:"The short code"             example:"Xy3_a-9Q"                           json:"code"`
		OriginalURL string    `doc:"The original URL"           example:"https://example.com/very/long/path" json:"originalUrl"`
	}
}

// RedirectRequest identifies the link to resolve.
type RedirectRequest struct {
	ShortCode string `doc:"The short code" example:"Xy3_a-9Q" path:"shortCode"`
}

// RedirectResponse is either a 302 with Location or a plain text 404/410.
type RedirectResponse struct {
	Status       int
	Location     string `header:"Location"`
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}
