// Package vision transcribes rendered pages and images with a multimodal
// model into normalised text.
package vision
