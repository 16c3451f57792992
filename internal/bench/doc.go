// Package bench measures solver accuracy offline and against a live
// challenge site.
//
// Offline, RunPrecision walks a directory of labelled images whose file
// stems are the expected answers (for example "aatmag.jpg"). Stems shorter
// than six characters are skipped, which lets unlabelled downloads such as
// "17.jpg" sit in the same directory.
//
// Online, a Runner downloads fresh challenge images or solves and submits
// challenges in a loop. Network steps are retried with exponential backoff.
package bench
