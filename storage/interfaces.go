package storage

import "bizlistings/models"

// ListingWriter is the interface any canonical-listing backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// ListingStore is a ListingWriter that can also read back what it stored.
type ListingStore interface {
	ListingWriter
	FetchAll() ([]*models.Listing, error)
}

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}
