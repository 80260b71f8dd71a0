// Package ffmpeg wraps the ffmpeg command-line encoder for audio
// normalization. Uploads arrive in whatever container the browser produced;
// everything leaves as a constant-bitrate stereo MP3.
package ffmpeg
