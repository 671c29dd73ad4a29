// Package barrier coordinates multi-process preparation runs.
//
// The main rank (rank 0) prepares the corpus and then publishes a marker file
// in the save folder. Every other rank waits for that marker with fsnotify and
// only proceeds once it carries the run token shared by all ranks of the job.
// A marker left by an earlier job therefore never releases a waiting rank.
package barrier
