package media

import "fmt"

// Delivery resolutions. Thumbnail and watermarked are public previews;
// original is gated on an access grant.
const (
	ResolutionThumbnail   = "thumbnail"
	ResolutionWatermarked = "watermarked"
	ResolutionOriginal    = "original"
)

// CDN transformation chains. Previews carry a tiled copyright overlay so
// the unwatermarked asset is only reachable through the original tier.
const (
	thumbnailTransform   = "c_fill,w_400,h_400,q_auto/l_text:Arial_20_bold:%C2%A9,o_40,co_white,g_center"
	watermarkedTransform = "c_fill,w_1200,q_auto/l_text:Arial_50_bold:LUMINA%20%C2%A9%20PREVIEW,o_30,co_white,g_center/fl_layer_apply,fl_tiled"
	originalTransform    = "q_auto:best"
)

// URLBuilder constructs tiered delivery URLs for a CDN that applies
// path-encoded transformations (Cloudinary-style). It does no image work
// itself.
type URLBuilder struct {
	baseURL string
}

func NewURLBuilder(baseURL string) *URLBuilder {
	return &URLBuilder{baseURL: baseURL}
}

func (b *URLBuilder) publicID(eventID, photoID string) string {
	return fmt.Sprintf("lumina/events/%s/%s", eventID, photoID)
}

func (b *URLBuilder) build(transform, eventID, photoID string) string {
	return fmt.Sprintf("%s/%s/%s", b.baseURL, transform, b.publicID(eventID, photoID))
}

func (b *URLBuilder) Thumbnail(eventID, photoID string) string {
	return b.build(thumbnailTransform, eventID, photoID)
}

func (b *URLBuilder) Watermarked(eventID, photoID string) string {
	return b.build(watermarkedTransform, eventID, photoID)
}

func (b *URLBuilder) Original(eventID, photoID string) string {
	return b.build(originalTransform, eventID, photoID)
}
