package models

import "time"

// ProfileImage is one image of a member. Images are ordered by Idx and at
// most one per identity has Main set.
type ProfileImage struct {
	ID        int64
	UUID      string
	URL       string
	Idx       int
	Main      bool
	CreatedAt time.Time
}

// ProfileImageInput is one entry of a desired image list.
type ProfileImageInput struct {
	URL  string
	Idx  int
	Main bool
}

// IndexedProfileImage is a stored image with its position in the listing.
type IndexedProfileImage struct {
	Index int
	URL   string
	Main  bool
}

// UploadTarget lets a client PUT an image straight to object storage.
// ImageURL is the public address to register afterwards.
type UploadTarget struct {
	Key       string
	UploadURL string
	ImageURL  string
	ExpiresAt time.Time
}
